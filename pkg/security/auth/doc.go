// Package auth authenticates HTTP requests by API key.
//
// Keys come from the server.auth section of the configuration, either as
// literals or as the name of an environment variable holding the key:
//
//	validator, err := auth.NewValidator(cfg.Server.Auth.Keys, os.LookupEnv)
//	mw := auth.NewMiddleware(&cfg.Server.Auth, validator, collector, logger)
//	handler = mw.Handle(handler)
//
// The authenticated key's name is stored in the request context and can be
// read with IdentityFromContext.
package auth
