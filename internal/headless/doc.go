// Package headless renders a button session without a browser. Buttons are
// plain in-memory elements, and a simulated buyer drives the remote wallet,
// menu, and checkout components
package headless
