// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - MetadataStore: Per-worker durable key-value state (the cursor lives here)
//   - MetadataNamespace: Produces a MetadataStore scoped to one worker
//   - Dialer: Authenticates against an upstream and returns a Gateway
//   - Gateway: Fetches items from the upstream
//   - Extractor: Turns items into fragments and fragments into documents
//   - ContentStore: Document persistence (the document sink)
//   - SchedulerStore: Scheduler task state and run history
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
