// Package button orchestrates payment attempts for one rendered set of
// payment buttons
//
// The Orchestrator guards against overlapping attempts, selects a payment
// flow for every interaction, drives the selected flow instance, and
// records how each attempt finished. Setup binds the rendered buttons and
// menu toggles to the orchestrator and prerenders the inline wallet and
// menu frames
package button
