// Package util provides common utility functions and data structures
//
// This package includes a generic set implementation and the call
// sequencing helpers shared by the button packages
package util
