package config

// BuildVersion is set at build time with -ldflags "-X ...config.BuildVersion=<tag>"
var BuildVersion = "0.0.0-dev"
