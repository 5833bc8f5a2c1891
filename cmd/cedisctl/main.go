// cedisctl herramientas de operación del CEDIS: migraciones, carga de conteos y faltantes.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "advertencia: no se pudo cargar .env: %v\n", err)
	}

	app := &cli.App{
		Name:  "cedisctl",
		Usage: "Operación de traspasos CEDIS ↔ sucursales",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Aplica las migraciones SQL pendientes",
				Action: runMigrate,
			},
			{
				Name:  "token",
				Usage: "Emite un token de acceso para integraciones o pruebas",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "ID del actor", Required: true},
					&cli.StringFlag{Name: "branch", Usage: "Sucursal del actor"},
					&cli.StringFlag{Name: "role", Usage: "Rol del actor", Value: "system"},
					&cli.IntFlag{Name: "minutes", Usage: "Vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)"},
				},
				Action: runToken,
			},
			{
				Name:  "stock",
				Usage: "Existencias",
				Subcommands: []*cli.Command{
					{
						Name:      "import",
						Usage:     "Carga un conteo físico (CSV sku,cantidad[,minimo]) como ajuste de importación",
						ArgsUsage: "<archivo.csv>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "branch", Usage: "Sucursal del conteo", Required: true, EnvVars: []string{"IMPORT_BRANCH_ID"}},
							&cli.StringFlag{Name: "delimiter", Usage: "Separador de columnas", Value: ","},
							&cli.BoolFlag{Name: "latin1", Usage: "El archivo viene en ISO-8859-1"},
							&cli.BoolFlag{Name: "dry-run", Usage: "Solo valida, no escribe"},
						},
						Action: runStockImport,
					},
				},
			},
			{
				Name:  "shortages",
				Usage: "Faltantes por sucursal",
				Subcommands: []*cli.Command{
					{
						Name:  "scan",
						Usage: "Detecta faltantes de todas las sucursales",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "create-requests", Usage: "Genera solicitudes automáticas para los faltantes sin solicitud abierta"},
						},
						Action: runShortagesScan,
					},
					{
						Name:  "worker",
						Usage: "Ejecuta el escaneo de faltantes según SHORTAGE_SCAN_CRON",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "cron", Usage: "Expresión cron (sobrescribe SHORTAGE_SCAN_CRON)"},
						},
						Action: runShortagesWorker,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
