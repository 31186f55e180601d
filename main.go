package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/deemkeen/feedsync/app"
	"github.com/deemkeen/feedsync/util"
)

func main() {
	// Parse command line flags
	versionFlag := flag.Bool("v", false, "Print version information")
	configFlag := flag.String("config", "", "Path to config.yaml")
	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Printf("%s v%s\n", util.Name, util.GetVersion())
		os.Exit(0)
	}

	// Load configuration
	conf, err := util.ReadConfFrom(*configFlag)
	if err != nil {
		log.Fatalln(err)
	}

	// The UI owns the terminal, so logs go to journald or a file
	closer, err := util.SetupLogging(conf.Conf.WithJournald, conf.Conf.LogFile)
	if err != nil {
		log.Fatalln(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	log.Printf("%s v%s", util.Name, util.GetVersion())
	log.Println("Configuration: ")
	log.Println(util.PrettyPrint(conf))

	// Create and initialize the application
	application, err := app.New(conf)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Start the application (blocks until the UI exits or a signal arrives)
	if err := application.Start(); err != nil {
		log.Printf("Application error: %v", err)
		os.Exit(1)
	}
}
