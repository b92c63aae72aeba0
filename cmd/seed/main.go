// seed carga un catálogo JSON (ubicaciones y artículos con stock inicial) en el backend
// configurado y emite un token JWT de desarrollo para la misma tienda.
//
// Uso: go run ./cmd/seed [ruta/catalogo.json] [company_id]
// Por defecto lee catalog.json del directorio actual y usa la tienda global.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/backend"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type catalog struct {
	Locations []struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"locations"`
	Items []struct {
		SKU   string          `json:"sku"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
		// Stock por nombre de ubicación.
		Stock map[string]int `json:"stock"`
	} `json:"items"`
}

func main() {
	path := "catalog.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	tenantID := ""
	if len(os.Args) > 2 {
		tenantID = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}
	var cat catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar catálogo: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, closeStore, err := backend.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir backend: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := inventory.NewLedgerService(store, log, inventory.Config{AllowNegativeStock: cfg.Ledger.AllowNegativeStock})

	byName := map[string]string{}
	existing, err := svc.ListLocations(ctx, tenantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Listar ubicaciones: %v\n", err)
		os.Exit(1)
	}
	for _, l := range existing {
		byName[locKey(l.Name)] = l.ID
	}
	for _, l := range cat.Locations {
		if _, ok := byName[locKey(l.Name)]; ok {
			continue
		}
		loc, err := svc.CreateLocation(ctx, tenantID, l.Name, l.Address)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear ubicación %s: %v\n", l.Name, err)
			os.Exit(1)
		}
		byName[locKey(loc.Name)] = loc.ID
	}

	created := 0
	for _, it := range cat.Items {
		stock := map[string]int{}
		for name, qty := range it.Stock {
			id, ok := byName[locKey(name)]
			if !ok {
				fmt.Fprintf(os.Stderr, "Artículo %s: ubicación %q no existe\n", it.SKU, name)
				os.Exit(1)
			}
			stock[id] = qty
		}
		_, err := svc.CreateItem(ctx, tenantID, ledger.NewItem{SKU: it.SKU, Name: it.Name, Price: it.Price, InitialStock: stock})
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear artículo %s: %v\n", it.SKU, err)
			os.Exit(1)
		}
		created++
	}
	fmt.Printf("Ubicaciones: %d, artículos nuevos: %d\n", len(byName), created)

	if cfg.JWT.Secret != "" {
		tok, err := jwt.Generate(cfg.JWT.Secret, "seed", tenantID, "admin", cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Token admin (%s): %s\n", storeLabel(tenantID), tok)
	}
}

func storeLabel(tenantID string) string {
	if tenantID == "" {
		return "global"
	}
	return "tenant " + tenantID
}

// locKey normaliza el nombre igual que la unicidad de ubicaciones del ledger.
func locKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
