// Package repository implements reservation.Storage on MySQL.  Rows keep
// an AUTO_INCREMENT sequence column so listings can be returned in
// insertion order, which the store relies on for its tie-break.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrCorruptRow is returned when a stored row cannot be decoded, for
// example when the seats column is not a JSON array of strings.
var ErrCorruptRow = errors.New("corrupt reservation row")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
