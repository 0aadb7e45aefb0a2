// Package api defines the core data types and collaborator contracts of the
// payment button orchestration engine
//
// This package contains the shared types used across the engine, including
// payments, wallets, service data, merchant props and callbacks, menu
// choices, remote UI component contracts, and telemetry events
package api
