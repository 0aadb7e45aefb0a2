// Package wallet implements the inline wallet flow. The buyer's stored
// instruments are shown in an inline frame next to the button while the
// order is created; any failure degrades to the full web checkout popup
package wallet
