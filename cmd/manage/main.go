// Command manage runs administrative tasks against the recipe database:
//
//	manage migrate
//	manage createsuperuser -email admin@example.com -password secret -name Admin
//	manage deleteuser -email someone@example.com
//	manage seed -email demo@example.com -password demopass
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/backend/config"
	"github.com/pageza/recipe-api/backend/internal/database"
	"github.com/pageza/recipe-api/backend/internal/logging"
	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/types"
)

var errUsage = errors.New("usage: manage <migrate|createsuperuser|deleteuser|seed> [flags]")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel)

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return execute(ctx, &env{cfg: cfg, db: db, log: log, out: os.Stdout}, args)
}

type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *slog.Logger
	out io.Writer
}

func (e *env) auth() *service.AuthService {
	return service.NewAuthService(e.db, e.cfg.JWTSecret, e.cfg.JWTTTL, e.log)
}

func execute(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		if err := database.RunMigrations(e.db); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "migrations applied")
		return nil
	case "createsuperuser":
		return createSuperuser(ctx, e, args[1:])
	case "deleteuser":
		return deleteUser(ctx, e, args[1:])
	case "seed":
		return seed(ctx, e, args[1:])
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func createSuperuser(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.SetOutput(e.out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("createsuperuser: -email and -password are required")
	}

	user, err := e.auth().CreateSuperuser(ctx, *email, *password, *name)
	if err != nil {
		return fmt.Errorf("createsuperuser: %w", err)
	}
	fmt.Fprintf(e.out, "superuser %s created (id %d)\n", user.Email, user.ID)
	return nil
}

func deleteUser(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("deleteuser", flag.ContinueOnError)
	fs.SetOutput(e.out)
	email := fs.String("email", "", "email of the account to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("deleteuser: -email is required")
	}

	auth := e.auth()
	user, err := auth.GetUserByEmail(ctx, *email)
	if err != nil {
		return fmt.Errorf("deleteuser: %w", err)
	}
	if err := auth.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("deleteuser: %w", err)
	}
	fmt.Fprintf(e.out, "user %s deleted\n", user.Email)
	return nil
}

type seedRecipe struct {
	title       string
	minutes     int
	price       string
	tags        []string
	ingredients []string
}

var seedRecipes = []seedRecipe{
	{"Chickpea curry", 35, "8.50", []string{"Vegan", "Dinner"}, []string{"Chickpeas", "Coconut milk", "Onion"}},
	{"Greek salad", 15, "6.00", []string{"Vegetarian", "Lunch"}, []string{"Feta", "Tomato", "Cucumber", "Olives"}},
	{"Overnight oats", 5, "2.25", []string{"Breakfast", "Vegetarian"}, []string{"Oats", "Milk", "Honey"}},
	{"Beef tacos", 25, "9.75", []string{"Dinner"}, []string{"Beef", "Tortillas", "Onion", "Tomato"}},
	{"Miso soup", 10, "3.50", []string{"Vegan", "Lunch"}, []string{"Miso", "Tofu", "Seaweed"}},
}

// seed creates a demo account, if missing, and gives it a few recipes.
func seed(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(e.out)
	email := fs.String("email", "demo@example.com", "demo account email")
	password := fs.String("password", "demopass123", "demo account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	auth := e.auth()
	user, err := auth.GetUserByEmail(ctx, *email)
	if errors.Is(err, service.ErrNotFound) {
		user, err = auth.Register(ctx, types.RegisterRequest{Email: *email, Password: *password, Name: "Demo User"})
	}
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	storage, err := service.NewStorage(ctx, e.cfg)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	recipes := service.NewRecipeService(e.db, service.NewImageService(storage, e.cfg.MaxUploadBytes, e.log), e.log)

	for _, r := range seedRecipes {
		price := decimal.RequireFromString(r.price)
		req := types.RecipeRequest{
			Title:       &r.title,
			TimeMinutes: &r.minutes,
			Price:       &price,
		}
		for _, name := range r.tags {
			req.Tags = append(req.Tags, types.AttributeRequest{Name: name})
		}
		for _, name := range r.ingredients {
			req.Ingredients = append(req.Ingredients, types.AttributeRequest{Name: name})
		}
		if _, err := recipes.CreateRecipe(ctx, user.ID, req); err != nil {
			return fmt.Errorf("seed %q: %w", r.title, err)
		}
	}

	fmt.Fprintf(e.out, "seeded %d recipes for %s\n", len(seedRecipes), user.Email)
	return nil
}
