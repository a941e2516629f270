// Package logging builds the structured loggers used across gqlbridge.
//
// Operational logging goes through log/slog. Relayed devtools events are not
// logged here; they live in the bridge's event cache.
//
//	logger, err := logging.FromSettings("debug", "json", os.Stderr)
//	if err != nil {
//	    return err
//	}
//	logger.Info("bridge active", "path", "/__devtools")
//
// Components accept a *slog.Logger in their options and fall back to Nop when
// none is given.
package logging
