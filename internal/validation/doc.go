// Package validation checks merchant integrations: the intent declared
// with the button props, and the order produced by createOrder against
// what the render expects
package validation
