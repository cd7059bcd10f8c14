// Package pool lends connections produced by a Manager through
// github.com/jackc/puddle/v2.
//
// Sizing, queueing and resource bookkeeping belong to puddle. This package
// only wires the Manager contract into it:
//
//   - Manager.Connect is puddle's constructor.
//   - Get runs Manager.HasBroken and then Manager.IsValid on every checkout
//     when TestOnCheckOut is set; a failing connection is destroyed and
//     another one acquired until the context ends.
//   - Conn.Release runs Manager.HasBroken and destroys broken connections
//     instead of returning them to the idle set.
//   - Destroyed connections are closed when they implement io.Closer.
//
// Example:
//
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
//	stmt, err := conn.Value().NewStatement()
package pool
