// main.go
//
// An equine records REST service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of equirecords.
// equirecords is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// equirecords is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with equirecords.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/localnerve/equirecords/internal/config"
	"github.com/localnerve/equirecords/internal/logging"
	"github.com/localnerve/equirecords/internal/testutil"
)

// printEnv writes the environment a server needs to use the stack
func printEnv(cfg *config.Config) {
	fmt.Printf("DB_TYPE=%s\n", cfg.DBType)
	fmt.Printf("DB_HOST=%s\n", cfg.DBHost)
	fmt.Printf("DB_PORT=%s\n", cfg.DBPort)
	fmt.Printf("DB_DATABASE=%s\n", cfg.DBDatabase)
	fmt.Printf("DB_USER=%s\n", cfg.DBUser)
	fmt.Printf("DB_PASSWORD=%s\n", cfg.DBPassword)
	fmt.Printf("REDIS_ADDR=%s\n", cfg.RedisAddr)
	fmt.Printf("AUTHZ_URL=%s\n", cfg.AuthzURL)
	fmt.Printf("AUTHZ_CLIENT_ID=%s\n", cfg.AuthzClientID)
}

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbType string
	flag.StringVar(&dbType, "db", "", "database engine: mysql or postgres (default DB_TYPE or mysql)")
	flag.Parse()

	usage := `
Run the equirecords development containers (database, Redis, Authorizer) and print
the environment that points a server at them. Stop with Ctrl-C.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-db mysql|postgres]

example
  testcontainers -f /path/to/something/.env -db postgres
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}
	if dbType == "" {
		dbType = os.Getenv("DB_TYPE")
	}
	if dbType == "" {
		dbType = "mysql"
	}
	if _, err := logging.New(os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	stack, err := testutil.StartStack(ctx, dbType)
	if err != nil {
		log.Fatalf("Failed to create test containers: %v\n", err)
	}
	printEnv(stack.Config)

	<-ctx.Done()
	log.Printf("Terminating test containers...\n")

	shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := stack.Terminate(shutdown); err != nil {
		log.Printf("Failed to terminate containers: %v\n", err)
	}
}
