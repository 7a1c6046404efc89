package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/prepflow/inventory-intel/internal/domain"
)

type dbKeyType struct{}

var dbKey = dbKeyType{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *sql.DB {
	db, _ := c.Context.Value(dbKey).(*sql.DB)
	return db
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with inventory data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:  "items",
				Usage: "Seed inventory items from a CSV file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with columns: id,name,category,unit,current_stock,cost_per_unit,par_level,supplier_id",
						Value:   "./data/seeds/items.csv",
						EnvVars: []string{"SEED_ITEMS_FILE"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedItems,
			},
			{
				Name:  "suppliers",
				Usage: "Seed suppliers from a CSV file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with columns: id,name,lead_time_hours",
						Value:   "./data/seeds/suppliers.csv",
						EnvVars: []string{"SEED_SUPPLIERS_FILE"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedSuppliers,
			},
			{
				Name:  "connections",
				Usage: "Seed POS connections from a CSV file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with columns: id,name,connected",
						Value:   "./data/seeds/pos_connections.csv",
						EnvVars: []string{"SEED_CONNECTIONS_FILE"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedConnections,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedItems(c *cli.Context) error {
	rows, err := readCSV(c.String("file"))
	if err != nil {
		return err
	}

	db := dbFrom(c)
	query := `
		INSERT INTO inventory_items (
			id, name, category, unit, current_stock, opening_stock,
			cost_per_unit, par_level, supplier_id, last_updated
		) VALUES ($1, $2, $3, $4, $5, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			unit = EXCLUDED.unit,
			cost_per_unit = EXCLUDED.cost_per_unit,
			par_level = EXCLUDED.par_level,
			supplier_id = EXCLUDED.supplier_id,
			last_updated = EXCLUDED.last_updated
	`

	count := 0
	for _, row := range rows {
		if len(row) < 7 {
			return fmt.Errorf("items row %d: expected at least 7 columns, got %d", count+1, len(row))
		}

		stock, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return fmt.Errorf("items row %d: invalid current_stock %q", count+1, row[4])
		}
		cost, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return fmt.Errorf("items row %d: invalid cost_per_unit %q", count+1, row[5])
		}
		par, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return fmt.Errorf("items row %d: invalid par_level %q", count+1, row[6])
		}

		supplier := sql.NullString{}
		if len(row) > 7 && row[7] != "" {
			supplier = sql.NullString{String: row[7], Valid: true}
		}

		_, err = db.ExecContext(c.Context, query,
			row[0], row[1], string(domain.ParseCategory(row[2])), row[3],
			stock, cost, par, supplier, time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", row[0], err)
		}
		count++
	}

	log.Printf("seeded %d inventory items", count)
	return nil
}

func seedSuppliers(c *cli.Context) error {
	rows, err := readCSV(c.String("file"))
	if err != nil {
		return err
	}

	db := dbFrom(c)
	query := `
		INSERT INTO suppliers (id, name, lead_time_hours)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			lead_time_hours = EXCLUDED.lead_time_hours
	`

	count := 0
	for _, row := range rows {
		if len(row) < 3 {
			return fmt.Errorf("suppliers row %d: expected 3 columns, got %d", count+1, len(row))
		}

		leadTime, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("suppliers row %d: invalid lead_time_hours %q", count+1, row[2])
		}

		if _, err := db.ExecContext(c.Context, query, row[0], row[1], leadTime); err != nil {
			return fmt.Errorf("failed to insert supplier %s: %w", row[0], err)
		}
		count++
	}

	log.Printf("seeded %d suppliers", count)
	return nil
}

func seedConnections(c *cli.Context) error {
	rows, err := readCSV(c.String("file"))
	if err != nil {
		return err
	}

	db := dbFrom(c)
	query := `
		INSERT INTO pos_connections (id, name, connected, last_sync)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			connected = EXCLUDED.connected
	`

	count := 0
	for _, row := range rows {
		if len(row) < 3 {
			return fmt.Errorf("connections row %d: expected 3 columns, got %d", count+1, len(row))
		}

		connected, err := strconv.ParseBool(row[2])
		if err != nil {
			return fmt.Errorf("connections row %d: invalid connected flag %q", count+1, row[2])
		}

		if _, err := db.ExecContext(c.Context, query, row[0], row[1], connected, time.Time{}); err != nil {
			return fmt.Errorf("failed to insert pos connection %s: %w", row[0], err)
		}
		count++
	}

	log.Printf("seeded %d pos connections", count)
	return nil
}

// readCSV returns the data rows of a CSV file, skipping the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if first {
			first = false
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}
