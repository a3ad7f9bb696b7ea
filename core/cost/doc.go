// Package cost estimates the monetary cost of model inference from token
// usage.
//
// [ModelCost] holds per-million-token prices for one model; [Lookup] returns
// the built-in prices for the models searchagent defaults to. Prices are
// estimates in USD and are never sent anywhere.
package cost
