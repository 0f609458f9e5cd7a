package cmd

import (
	"errors"
	"fmt"
	"log"

	departmentDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/employee"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password"

var seedTables = []string{
	"leave_days_taken",
	"leave_requests",
	"work_timers",
	"attendance_records",
	"departments",
	"employees",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range seedTables {
				if err := gdb.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		employees := []employeeDatamodel.Employee{
			{NumericID: cfg.Attendance.AdminNumericID, Name: "Padil Admin", Username: "admin", Email: "padil@mail.com", Department: "Human Resources", JobTitle: "HR Manager"},
			{NumericID: 1001, Name: "Fadhil", Username: "fadhil", Email: "fadhil@mail.com", Department: "Engineering", JobTitle: "Backend Engineer"},
			{NumericID: 1002, Name: "Sari Wulandari", Username: "sari", Email: "sari@mail.com", Department: "Engineering", JobTitle: "Frontend Engineer"},
			{NumericID: 1003, Name: "Budi Santoso", Username: "budi", Email: "budi@mail.com", Department: "Finance", JobTitle: "Accountant"},
		}
		for _, e := range employees {
			e.PasswordHash = string(hash)
			e.Status = "active"
			created, err := firstOrCreate(gdb, &e, "numeric_id = ?", e.NumericID)
			if err != nil {
				log.Fatalf("failed to seed employee %s: %v", e.Username, err)
			}
			if created {
				fmt.Println("Seeded employee:", e.Username)
			}
		}

		departments := []departmentDatamodel.Department{
			{Name: "Human Resources", Head: "Padil Admin", Description: "people operations", Budget: 50000, Location: "Floor 2"},
			{Name: "Engineering", Head: "Fadhil", Description: "product engineering", Budget: 250000, Location: "Floor 3"},
			{Name: "Finance", Head: "Budi Santoso", Description: "accounting and payroll", Budget: 80000, Location: "Floor 2"},
		}
		for _, d := range departments {
			created, err := firstOrCreate(gdb, &d, "name = ?", d.Name)
			if err != nil {
				log.Fatalf("failed to seed department %s: %v", d.Name, err)
			}
			if created {
				fmt.Printf("Seeded department: %s\n", d.Name)
			}
		}

		err = gdb.Exec(`UPDATE departments d SET employee_count = (
			SELECT COUNT(*) FROM employees e WHERE e.department = d.name)`).Error
		if err != nil {
			log.Fatalf("failed to recount departments: %v", err)
		}

		fmt.Printf("Seed complete; every seeded employee logs in with %q\n", seedPassword)
	},
}

// firstOrCreate inserts row unless a record matching the query already exists.
func firstOrCreate[T any](db *gorm.DB, row *T, query string, args ...interface{}) (bool, error) {
	var existing T
	err := db.Where(query, args...).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, db.Create(row).Error
}
