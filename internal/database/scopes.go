package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err is a MySQL unique constraint violation.
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// InOrganization restricts a query to one organisation's rows.
func InOrganization(organizationID string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("organization_id = ?", organizationID)
	}
}

// Search matches term as a substring of any of columns. An empty term
// leaves the query unchanged.
func Search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	term = strings.TrimSpace(term)
	return func(tx *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return tx
		}
		like := "%" + escapeLike(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = col + " LIKE ?"
			args[i] = like
		}
		return tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
