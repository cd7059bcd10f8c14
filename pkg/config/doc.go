// Package config loads the YAML description of a pooled ADBC database.
//
// A configuration names the driver, the options used to create the
// database, the ordered connection options, and the pool, logging and
// metrics settings. ${VAR_NAME} references are replaced with environment
// variables before parsing, so credentials can stay out of the file:
//
//	driver: snowflake
//	database:
//	  uri: ${SNOWFLAKE_URI}
//	connection_options:
//	  - key: adbc.connection.autocommit
//	    value: "false"
//	pool:
//	  max_size: 8
//	  connection_timeout: 15s
//
// Load applies defaults and validates before returning.
package config
