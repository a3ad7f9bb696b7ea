// Package client turns an [ai.Provider] into the [SendFunc] driven by the
// orchestration loop. A [Client] fills in request defaults (model and
// generation parameters) and threads every call through a middleware chain;
// ready-made middlewares live in the middleware subpackage.
package client
