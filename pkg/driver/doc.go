// Package driver connects Go ADBC drivers (github.com/apache/arrow-adbc/go/adbc)
// to the manager package.
//
// Database and Connection adapt adbc.Database and adbc.Connection to
// manager.Database and manager.Connection. The registry resolves a driver
// by name; "flightsql" and "snowflake" are built in. A driver may carry an
// OptionCheck that vets database options before NewDatabase; snowflake
// parses its uri as a gosnowflake DSN.
//
//	db, err := driver.Open("flightsql", map[string]string{
//	    adbc.OptionKeyURI: "grpc://localhost:31337",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	mgr := manager.New(db)
//	defer mgr.Close()
package driver
