package db

import (
	"database/sql"
	"fmt"
)

// nextSubmissionNumber 在事务中检索当前年份的投稿编号并将其加一（编号每年重新开始）。
func nextSubmissionNumber(tx *sql.Tx, year int) (int, error) {
	name := fmt.Sprintf("submission_%d", year)
	if _, err := tx.Exec("INSERT OR IGNORE INTO id_counter(counter_name, current_value) VALUES(?, 0)", name); err != nil {
		return 0, err
	}

	var current int
	err := tx.QueryRow("SELECT current_value FROM id_counter WHERE counter_name = ?", name).Scan(&current)
	if err != nil {
		return 0, err
	}

	next := current + 1
	if _, err = tx.Exec("UPDATE id_counter SET current_value = ? WHERE counter_name = ?", next, name); err != nil {
		return 0, err
	}
	return next, nil
}
