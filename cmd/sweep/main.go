// Package main: sweep service.
//
// The endpoint session is created lazily by the first request that needs it, so the service comes
// up and stays up even when every configured node is down; a later request simply retries the
// whole bootstrap pass.
package main

import (
	"encoding/hex"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tarancss/hd"

	"github.com/tarancss/sweep/lib/config"
	"github.com/tarancss/sweep/lib/msg"
	"github.com/tarancss/sweep/lib/msg/amqp"
	"github.com/tarancss/sweep/sweep"
)

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json file")
	monitor := flag.Bool("m", false, "flag to monitor the server with Prometheus at http://localhost:9100")
	flag.Parse()

	// load .env if present, then extract configuration
	_ = godotenv.Load()

	conf, err := config.ExtractConfiguration(*confPath)
	if err != nil {
		panic(err)
	}

	log.Printf("Configuration loaded: %d endpoint candidates, reserve %s, default amount %s",
		len(conf.Nodes), conf.FeeReserve, conf.DefaultAmount)

	// load HD wallet when a seed is configured; without it the service runs read-only
	var hdw *hd.HdWallet

	if conf.Seed != "" {
		seed, err := hex.DecodeString(conf.Seed)
		if err != nil {
			panic(err)
		}

		if hdw, err = hd.Init(seed); err != nil {
			panic(err)
		}
	} else {
		log.Print("No HD seed configured, transfers will be rejected")
	}

	// load Prometheus monitor
	if *monitor {
		go func() {
			log.Println("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", promhttp.Handler())
			http.ListenAndServe(":9100", h)
		}()
	}

	// load message broker, events are optional
	var mb msg.EventSink

	if conf.MbConn != "" {
		switch conf.MbType {
		case "amqp":
			if mb, err = amqp.New(conf.MbConn); err != nil {
				time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

				if mb, err = amqp.New(conf.MbConn); err != nil {
					panic(err)
				}
			}

			if err = mb.Setup(nil); err != nil {
				panic(err)
			}
		default:
			log.Printf("Unknown message broker type: %s\n", conf.MbType)
		}
	}

	// create sweep service
	s, err := sweep.New(conf, mb, hdw)
	if err != nil {
		panic(err)
	}

	// capture CTRL+C or docker's SIGTERM for gracious exit
	finish := make(chan int)

	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		// do last actions and wait for all write operations to end
		s.Stop()
		close(finish)
	}()

	// init RESTful API, wait for its return and log response
	log.Printf("Sweep: %s\n", s.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))

	<-finish
}
