package main

import (
	"fmt"

	"freightdesk/internal/auth"
	"freightdesk/internal/config"
	"freightdesk/internal/database"
	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/internal/service"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "freightctl",
		Usage: "operator tasks for the freight desk database",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create or update the schema",
				Action: runMigrate,
			},
			{
				Name:  "create-user",
				Usage: "add a dashboard account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"FREIGHTCTL_PASSWORD"}},
					&cli.StringFlag{Name: "role", Value: model.RoleStaff},
				},
				Action: runCreateUser,
			},
			{
				Name:  "seed",
				Usage: "insert sample suppliers and forwarders",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "supplier"},
					&cli.StringSliceFlag{Name: "forwarder"},
				},
				Action: runSeed,
			},
		},
	}
}

func openDB() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return cfg, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return cfg, nil, err
	}
	return cfg, db, nil
}

func runMigrate(c *cli.Context) error {
	if _, _, err := openDB(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "schema up to date")
	return nil
}

func runCreateUser(c *cli.Context) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}

	svc := service.NewAuthService(repository.NewUserRepository(db), auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	user, err := svc.CreateUser(c.Context, service.CreateUserRequest{
		Email:    c.String("email"),
		Name:     c.String("name"),
		Password: c.String("password"),
		Role:     c.String("role"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created %s (%s) %s\n", user.Email, user.Role, user.ID)
	return nil
}

func runSeed(c *cli.Context) error {
	_, db, err := openDB()
	if err != nil {
		return err
	}

	suppliers := service.NewSupplierService(repository.NewSupplierRepository(db))
	for _, name := range c.StringSlice("supplier") {
		if _, err := suppliers.Create(c.Context, service.CreatePartyRequest{Name: name}); err != nil {
			return fmt.Errorf("supplier %q: %w", name, err)
		}
	}
	forwarders := service.NewForwarderService(repository.NewForwarderRepository(db))
	for _, name := range c.StringSlice("forwarder") {
		if _, err := forwarders.Create(c.Context, service.CreatePartyRequest{Name: name}); err != nil {
			return fmt.Errorf("forwarder %q: %w", name, err)
		}
	}
	fmt.Fprintf(c.App.Writer, "seeded %d suppliers, %d forwarders\n", len(c.StringSlice("supplier")), len(c.StringSlice("forwarder")))
	return nil
}
