// Package manager bridges ADBC-style database handles to a generic connection
// pool.
//
// A ConnectionManager owns one Database and an ordered list of connection
// options. It implements the three calls a pool makes on its resource
// factory:
//
//   - Connect creates a connection, through NewConnection when no options
//     are configured and NewConnectionWithOptions otherwise.
//   - IsValid creates and immediately closes a statement as a liveness probe.
//   - HasBroken is always false. The database offers no cheap out-of-band
//     signal, so all detection happens in IsValid.
//
// Every error coming back from the database is returned as *Error, whose
// message is "ADBC error: " followed by the original text and whose Unwrap
// returns the original value.
//
// # Usage
//
//	mgr := manager.WithOptions(db, []manager.Option{
//	    {Key: "adbc.connection.autocommit", Value: "false"},
//	})
//	p, err := pool.New[manager.Connection](mgr, pool.DefaultConfig(), log)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	conn, err := p.Get(ctx)
//	if err != nil {
//	    return err
//	}
//	defer conn.Release()
//
// The manager keeps no reference to the connections it hands out; they
// belong to the pool from then on.
package manager
