package connection

import (
	"database/sql"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormWithTx membungkus transaksi sql yang sudah dibuka pemanggil menjadi
// handle gorm. Statement yang jalan lewat handle ini memakai koneksi
// transaksi itu, jadi ikut commit/rollback bersama statement lain di
// transaksi yang sama.
func GormWithTx(tx *sql.Tx) *gorm.DB {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: tx}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		// postgres.New dengan Conn eksisting tidak membuka koneksi baru,
		// error di sini berarti dialector-nya salah rakit.
		panic(err)
	}
	return db
}
