package manager_test

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/adbcpool/pkg/manager"
	"github.com/ajitpratap0/adbcpool/pkg/testutil"
)

// Example shows the three calls a pool makes on the manager.
func Example() {
	db := testutil.NewFakeDatabase()
	mgr := manager.WithOptions(db, []manager.Option{
		{Key: "timeout", Value: "30"},
	}, manager.WithLogger(zap.NewNop()))

	conn, err := mgr.Connect(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("valid:", mgr.IsValid(conn) == nil)
	fmt.Println("broken:", mgr.HasBroken(conn))
	fmt.Println("with-options calls:", len(db.OptionCalls()))

	// Output:
	// valid: true
	// broken: false
	// with-options calls: 1
}

// ExampleFromDatabase shows how database errors are presented.
func ExampleFromDatabase() {
	err := manager.FromDatabase(errors.New("authentication failed"))
	fmt.Println(err)

	// Output:
	// ADBC error: authentication failed
}
