package db

import (
	"fmt"

	"gorm.io/gorm"
)

// MonthExpr returns an integer month (1-12) expression for column.
func MonthExpr(tx *gorm.DB, column string) string {
	switch tx.Dialector.Name() {
	case "mysql":
		return fmt.Sprintf("MONTH(%s)", column)
	case "sqlite":
		return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", column)
	default:
		return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s) AS INTEGER)", column)
	}
}
