// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The cursor protocol, the worker lifecycle host and the scheduler live
// here. Services never import adapters or connectors.
package services
