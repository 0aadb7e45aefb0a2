// Package flow implements payment flow descriptors and their orchestration
// primitives
//
// A Flow describes one way of completing a payment (full web checkout, the
// inline wallet). Flows are registered in priority order; the Registry
// resolves which flow serves a given payment and the Lifecycle tracks the
// state of each running flow instance
package flow
