// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never talk to infrastructure directly; concurrency,
// rate limiting and retries live here, transport lives in adapters.
package services
