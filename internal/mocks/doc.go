// Package mocks provides centralized test doubles for the store, auth and
// mail interfaces.
//
// Store mocks are in-memory implementations that behave like the real
// backends, so service tests can assert on persisted state. Every method can
// be overridden through its Fn field to inject failures:
//
//	stores := mocks.NewStores()
//	stores.Notifications.CreateManyFn = func(context.Context, []*domain.Notification) error {
//	    return errors.New("insert failed")
//	}
package mocks
