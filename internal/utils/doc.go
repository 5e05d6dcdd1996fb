// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the Viper-backed ConfigurationLoader, the zap LoggerFactory and the
// accessor used to pass resolved paths between Cobra commands.
package utils
