// Package sweep and its sub-packages implement a funds-sweep service for ethereum-type networks.
/*
sweep provides a single microservice (package sweep) that exposes an HTTP RESTful API to move the
funds held by one signing identity to a destination address, keeping back a configurable reserve
so the account can always pay the transaction fee.

Architecture

A session layer binds exactly one live node connection at a time. At bootstrap, the configured
endpoint candidates are probed strictly in priority order with a bounded liveness check; the first
node that answers wins and later candidates are never contacted. The signing identity is derived
from a hierarchical deterministic wallet seed (HD wallet), so the service never handles raw private
keys in its configuration. When no seed is configured the session is read-only and any signing
operation is rejected with a distinct error.

The transfer pipeline reads the signer balance, withholds the fee reserve, clamps the requested
amount to what the balance affords, submits one signed transfer and waits until the network
confirms it. The pipeline is serialized end-to-end per signer so concurrent requests can never
race each other into a nonce conflict or a double spend attempt.

A blockchain layer (package lib/block) wraps the node client so other ethereum-type networks can
be added. Confirmed sweeps can optionally be published to a message broker (package lib/msg) for
any front-end or bookkeeping consumer. The service can be monitored via a Prometheus API by
setting the flag "-m" at startup.

The service can be started running cmd/sweep/main.go. Configuration is read from an optional JSON
file and overridden by SWEEP_* environment variables.
*/
package sweep
