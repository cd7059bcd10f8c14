package driver

import (
	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/snowflakedb/gosnowflake"
)

// checkSnowflakeOptions parses the "uri" option as a Snowflake DSN
// (user[:password]@account/database/schema[?param=value]) so malformed
// values fail before the driver dials out. A missing uri is left to the
// driver, which also accepts discrete username/account options.
func checkSnowflakeOptions(opts map[string]string) error {
	uri, ok := opts[adbc.OptionKeyURI]
	if !ok || uri == "" {
		return nil
	}
	_, err := gosnowflake.ParseDSN(uri)
	return err
}
