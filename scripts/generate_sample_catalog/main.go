package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Generates a sample catalogue CSV in the format accepted by the
// product import endpoint.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	rows := [][]string{
		{"Name", "Description", "Category", "Price", "Unit", "Stock", "Image URL"},
		{"Huevos de campo x12", "Docena de huevos de gallinas libres", "huevos", "3200", "docena", "40", ""},
		{"Huevos de campo x6", "Media docena de huevos de gallinas libres", "huevos", "1700", "media docena", "25", ""},
		{"Almendras peladas", "Almendras non pareil sin cascara", "frutos-secos", "9800", "kg", "12", ""},
		{"Nueces mariposa", "Nuez pelada seleccion extra light", "frutos-secos", "8500", "kg", "15", ""},
		{"Castañas de caju", "Caju tostado sin sal", "frutos-secos", "7900", "kg", "8", ""},
		{"Mix tropical", "Pasas, banana, caju y mani con miel", "frutos-secos", "5400", "500g", "20", ""},
		{"Semillas de chia", "Chia negra seleccionada", "semillas", "2800", "500g", "30", ""},
		{"Semillas de girasol", "Girasol pelado sin sal", "semillas", "1900", "500g", "18", ""},
		{"Lentejas", "Lenteja seca calibre 6mm", "legumbres", "2100", "kg", "35", ""},
		{"Garbanzos", "Garbanzo candeal remojado facil", "legumbres", "2400", "kg", "22", ""},
		{"Porotos negros", "Poroto negro de primera", "legumbres", "2300", "kg", "0", ""},
	}

	filePath := filepath.Join(dataDir, "sample_catalog.csv")
	if err := writeCatalogFile(filePath, rows); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(rows)-1)
	fmt.Println("\nImport it with:")
	fmt.Printf("  curl -X POST -H 'X-API-Key: <key>' -H 'Content-Type: application/json' \\\n")
	fmt.Printf("    -d '{\"path\": \"%s\"}' http://localhost:8080/api/import/products\n", filePath)
}

func writeCatalogFile(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}
