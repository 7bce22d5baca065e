// Package main provides operator utilities for Inkpress.
package main

import (
	"fmt"
	"os"
	"strconv"

	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/repository"
	"inkpress/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

// backends are the stores the admin commands run against. Redis is optional;
// without it cached listings simply expire on their own.
type backends struct {
	db  *gorm.DB
	rdb *redis.Client
}

type openFunc func() (*backends, error)

func connect() (*backends, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("Redis unavailable, cache will not be invalidated", "error", err)
		rdb = nil
	}
	return &backends{db: db, rdb: rdb}, nil
}

type services struct {
	users *service.UserService
	posts *service.PostService
}

func newServices(b *backends) *services {
	return &services{
		users: service.NewUserService(repository.NewUserRepository(b.db), nil, nil, ""),
		posts: service.NewPostService(
			repository.NewPostRepository(b.db),
			repository.NewTagRepository(b.db),
			cache.NewStore(b.rdb),
			nil, nil, 1,
		),
	}
}

func main() {
	if err := newApp(connect).Run(os.Args); err != nil {
		middleware.Logger.Error("admin command failed", "error", err)
		os.Exit(1)
	}
}

func newApp(open openFunc) *cli.App {
	var svc *services
	withServices := func(action func(*cli.Context, *services) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			if svc == nil {
				b, err := open()
				if err != nil {
					return err
				}
				svc = newServices(b)
			}
			return action(c, svc)
		}
	}

	return &cli.App{
		Name:  "inkpress-admin",
		Usage: "manage Inkpress accounts and data",
		Commands: []*cli.Command{
			{
				Name:      "promote",
				Usage:     "promote a user to admin",
				ArgsUsage: "<user_id>",
				Action: withServices(func(c *cli.Context, s *services) error {
					return setRole(c, s, models.RoleAdmin)
				}),
			},
			{
				Name:      "demote",
				Usage:     "demote an admin to member",
				ArgsUsage: "<user_id>",
				Action: withServices(func(c *cli.Context, s *services) error {
					return setRole(c, s, models.RoleMember)
				}),
			},
			{
				Name:   "list-admins",
				Usage:  "list every admin account",
				Action: withServices(listAdmins),
			},
			{
				Name:   "recount-likes",
				Usage:  "repair post like counters from the like rows",
				Action: withServices(recountLikes),
			},
			{
				Name:   "tag-stats",
				Usage:  "show how many posts carry each tag",
				Action: withServices(tagStats),
			},
		},
	}
}

func parseUserID(c *cli.Context) (uint, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit(fmt.Sprintf("usage: %s %s", c.Command.Name, c.Command.ArgsUsage), 2)
	}
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil || id == 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid user id %q", c.Args().First()), 2)
	}
	return uint(id), nil
}

func setRole(c *cli.Context, s *services, role models.Role) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := s.users.GetProfile(c.Context, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return cli.Exit(fmt.Sprintf("user with ID %d not found", id), 1)
		}
		return err
	}
	if user.Role == role {
		fmt.Fprintf(c.App.Writer, "User %s (ID: %d) is already %s\n", user.Name, user.ID, role)
		return nil
	}
	if user, err = s.users.SetRole(c.Context, id, role); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Updated %s (ID: %d) to %s\n", user.Name, user.ID, user.Role)
	return nil
}

func listAdmins(c *cli.Context, s *services) error {
	admins, err := s.users.ListByRole(c.Context, models.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		fmt.Fprintln(c.App.Writer, "No admins found")
		return nil
	}
	for _, admin := range admins {
		fmt.Fprintf(c.App.Writer, "ID: %d | Name: %s | Email: %s\n", admin.ID, admin.Name, admin.Email)
	}
	return nil
}

func recountLikes(c *cli.Context, s *services) error {
	changed, err := s.posts.RecountLikes(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Repaired like counters on %d posts\n", changed)
	return nil
}

func tagStats(c *cli.Context, s *services) error {
	usage, err := s.posts.TagUsage(c.Context)
	if err != nil {
		return err
	}
	for _, u := range usage {
		fmt.Fprintf(c.App.Writer, "%-24s %d\n", u.Name, u.Count)
	}
	return nil
}
