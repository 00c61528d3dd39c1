package cmd

import "errors"

var (
	errCompareArgs     = errors.New("compare takes either no ids or two ids")
	errReadOnlyStorage = errors.New("the catalog storage driver is read-only, configure storage.driver: sqlite")
)
