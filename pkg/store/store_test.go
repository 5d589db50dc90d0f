package store_test

import (
	"testing"

	"src.exline.sh/pkg/store"
	"src.exline.sh/pkg/store/storetest"
)

func TestCmd(t *testing.T) {
	tStore, cleanup := store.MustGetTempStore()
	defer cleanup()
	storetest.TestCmd(t, tStore)
}

func TestOption(t *testing.T) {
	tStore, cleanup := store.MustGetTempStore()
	defer cleanup()
	storetest.TestOption(t, tStore)
}
