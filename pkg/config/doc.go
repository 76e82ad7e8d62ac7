// Package config loads ggd client settings from YAML or JSONC files.
//
// The format is picked by extension: .yaml and .yml are YAML, .json and
// .jsonc are JSON that may contain comments and trailing commas.
//
//	endpoint: abc123-ats.iot.eu-west-1.amazonaws.com
//	thing_name: sensor-7
//	root_ca: /etc/ggd/AmazonRootCA1.pem
//	certificate: /etc/ggd/device.pem.crt
//	private_key: /etc/ggd/private.pem.key
//	selection:
//	  mode: manual
//	  group: 4e5b1a2c-...
//	  core: arn:aws:iot:eu-west-1:123456789012:thing/core-1
//	  interface: 2
//	fetch_timeout: 10s
//
// Paths are resolved relative to the config file.
package config
