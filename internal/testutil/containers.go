package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/localnerve/equirecords/internal/config"
)

// Images used by the containers; override for other engine versions
var (
	MariaDBImage    = "mariadb:11"
	PostgresImage   = "postgres:17-alpine"
	RedisImage      = "redis:7-alpine"
	AuthorizerImage = "lakhansamani/authorizer:latest"
)

const (
	dbName     = "equirecords"
	dbUser     = "equi"
	dbPassword = "equipass"
	authzPort  = "8080"
	clientID   = "equirecords-dev"
)

// Stack is a set of running containers backing the service
type Stack struct {
	Network    *testcontainers.DockerNetwork
	Database   testcontainers.Container
	Redis      testcontainers.Container
	Authorizer testcontainers.Container

	// Config points at the mapped host ports of the containers
	Config *config.Config
}

// Terminate stops every started container and removes the network
func (s *Stack) Terminate(ctx context.Context) error {
	var errs []error
	for _, c := range []testcontainers.Container{s.Authorizer, s.Redis, s.Database} {
		if c != nil {
			if err := c.Terminate(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if s.Network != nil {
		if err := s.Network.Remove(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartDatabase starts a MariaDB or PostgreSQL container and returns its connection config
func StartDatabase(ctx context.Context, dbType string) (testcontainers.Container, *config.Config, error) {
	return startDatabase(ctx, dbType, "")
}

func startDatabase(ctx context.Context, dbType, networkName string) (testcontainers.Container, *config.Config, error) {
	var (
		image string
		port  nat.Port
		env   map[string]string
		wt    wait.Strategy
	)

	switch dbType {
	case "postgres":
		image, port = PostgresImage, "5432/tcp"
		env = map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		}
		wt = wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second)
	case "mysql", "mariadb":
		image, port = MariaDBImage, "3306/tcp"
		env = map[string]string{
			"MARIADB_ROOT_PASSWORD": dbPassword,
			"MARIADB_DATABASE":      dbName,
			"MARIADB_USER":          dbUser,
			"MARIADB_PASSWORD":      dbPassword,
		}
		wt = wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second)
	default:
		return nil, nil, fmt.Errorf("unsupported container database type: %s", dbType)
	}

	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{string(port)},
		Env:          env,
		WaitingFor:   wt,
	}
	if networkName != "" {
		req.Networks = []string{networkName}
		req.NetworkAliases = map[string][]string{networkName: {"db"}}
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start %s: %w", dbType, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}

	cfg := &config.Config{
		LogLevel:          "warn",
		DBType:            dbType,
		DBHost:            host,
		DBPort:            mapped.Port(),
		DBDatabase:        dbName,
		DBUser:            dbUser,
		DBPassword:        dbPassword,
		DBConnectionLimit: 5,
	}

	if dbType != "postgres" {
		if err := waitForMySQL(ctx, cfg); err != nil {
			container.Terminate(ctx)
			return nil, nil, err
		}
	}
	return container, cfg, nil
}

// waitForMySQL pings until the server accepts logins; the port opens before init scripts finish
func waitForMySQL(ctx context.Context, cfg *config.Config) error {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to open mysql for readiness: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("database not ready after 30 seconds: %w", err)
}

// StartStack starts a database, Redis and Authorizer on one network
func StartStack(ctx context.Context, dbType string) (*Stack, error) {
	stack := &Stack{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	stack.Network = nw

	dbContainer, cfg, err := startDatabase(ctx, dbType, nw.Name)
	if err != nil {
		stack.Terminate(ctx)
		return nil, err
	}
	stack.Database = dbContainer
	stack.Config = cfg
	zap.L().Info("database container started", zap.String("type", dbType), zap.String("port", cfg.DBPort))

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        RedisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Networks:     []string{nw.Name},
		},
		Started: true,
	})
	if err != nil {
		stack.Terminate(ctx)
		return nil, fmt.Errorf("failed to start redis: %w", err)
	}
	stack.Redis = redisContainer
	if cfg.RedisAddr, err = redisContainer.Endpoint(ctx, ""); err != nil {
		stack.Terminate(ctx)
		return nil, err
	}

	tcpAuthzPort := nat.Port(authzPort + "/tcp")
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        AuthorizerImage,
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     clientID,
				"PORT":          authzPort,
				"DATABASE_TYPE": "sqlite",
				"DATABASE_URL":  "/tmp/authorizer.db",
				"ADMIN_SECRET":  dbPassword,
				"ROLES":         "admin,veterinaire,consultant",
				"DEFAULT_ROLES": "consultant",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {"authorizer"},
			},
		},
		Started: true,
	})
	if err != nil {
		stack.Terminate(ctx)
		return nil, fmt.Errorf("failed to start authorizer: %w", err)
	}
	stack.Authorizer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzMapped, err := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	if err != nil {
		stack.Terminate(ctx)
		return nil, err
	}
	cfg.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzMapped.Port())
	cfg.AuthzClientID = clientID

	return stack, nil
}
