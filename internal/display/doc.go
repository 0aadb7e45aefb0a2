// Package display coordinates the remote iframe-hosted UIs of a button
// render: the inline wallet and the funding menu
//
// Each Coordinator holds at most one UI handle per client id. A handle is
// hidden as soon as it is created, rendered into its frame at most once,
// and only becomes visible through an explicit display
package display
