// seed_locations carga el directorio de ubicaciones y los PIN de supervisores
// exportados del ERP (CSV separado por ';', UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_locations ubicaciones.csv [supervisores.csv]
//
//	ubicaciones.csv:  id;nombre;tipo;activa
//	supervisores.csv: usuario;ubicacion;pin   (ubicacion vacía = todas)
//
// Aplica las migraciones pendientes antes de cargar.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/farmacia-logistica/internal/application/auth"
	"github.com/jhoicas/farmacia-logistica/internal/domain/entity"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/postgres"
	"github.com/jhoicas/farmacia-logistica/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_locations ubicaciones.csv [supervisores.csv]")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}
	if !cfg.DB.Enabled() {
		fail("configuración", fmt.Errorf("DATABASE_URL o DB_HOST requerido"))
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fail("migraciones", err)
	}

	rows, err := readCSV(os.Args[1])
	if err != nil {
		fail("leer ubicaciones", err)
	}
	locRepo := postgres.NewLocationRepository(pool)
	var locs int
	for i, r := range rows {
		loc, err := parseLocation(r)
		if err != nil {
			fail(fmt.Sprintf("ubicaciones línea %d", i+1), err)
		}
		if err := locRepo.Upsert(ctx, loc); err != nil {
			fail("guardar ubicación "+loc.ID, err)
		}
		locs++
	}
	fmt.Printf("Ubicaciones: %d\n", locs)

	if len(os.Args) < 3 {
		return
	}
	rows, err = readCSV(os.Args[2])
	if err != nil {
		fail("leer supervisores", err)
	}
	credRepo := postgres.NewSupervisorCredentialRepository(pool)
	var sups int
	for i, r := range rows {
		if len(r) < 3 || strings.TrimSpace(r[0]) == "" || strings.TrimSpace(r[2]) == "" {
			fail(fmt.Sprintf("supervisores línea %d", i+1), fmt.Errorf("se esperan usuario;ubicacion;pin"))
		}
		hash, err := auth.HashPin(strings.TrimSpace(r[2]))
		if err != nil {
			fail("hash de PIN", err)
		}
		cred := &entity.SupervisorCredential{
			UserID:     strings.TrimSpace(r[0]),
			LocationID: strings.TrimSpace(r[1]),
			PinHash:    hash,
			Active:     true,
		}
		if err := credRepo.Upsert(ctx, cred); err != nil {
			fail("guardar supervisor "+cred.UserID, err)
		}
		sups++
	}
	fmt.Printf("Supervisores: %d\n", sups)
}

// readCSV lee el archivo completo; si no es UTF-8 válido lo decodifica como ISO-8859-1.
// Las líneas vacías y las que empiezan por '#' se ignoran.
func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(src)
	r.Comma = ';'
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func parseLocation(r []string) (*entity.Location, error) {
	if len(r) < 3 {
		return nil, fmt.Errorf("se esperan id;nombre;tipo[;activa]")
	}
	loc := &entity.Location{
		ID:     strings.TrimSpace(r[0]),
		Name:   strings.TrimSpace(r[1]),
		Type:   entity.LocationType(strings.ToUpper(strings.TrimSpace(r[2]))),
		Active: true,
	}
	if loc.ID == "" || loc.Name == "" {
		return nil, fmt.Errorf("id y nombre son obligatorios")
	}
	switch loc.Type {
	case entity.LocationStore, entity.LocationWarehouse, entity.LocationCentral:
	default:
		return nil, fmt.Errorf("tipo desconocido %q", r[2])
	}
	if len(r) > 3 && strings.TrimSpace(r[3]) != "" {
		active, err := strconv.ParseBool(strings.TrimSpace(r[3]))
		if err != nil {
			return nil, fmt.Errorf("activa: %w", err)
		}
		loc.Active = active
	}
	return loc, nil
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
