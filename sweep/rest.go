package sweep

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const timeout = 15

// router builds the API definition.
func (s *Sweeper) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.homeHandler)
	r.HandleFunc("/health", s.healthHandler).Methods("GET")   // plain health check
	r.HandleFunc("/status", s.statusHandler).Methods("GET")   // bound endpoint and signer
	r.HandleFunc("/balance", s.balanceHandler).Methods("GET") // signer balance
	r.HandleFunc("/sweep", s.sweepHandler).Methods("POST")    // submit and confirm a transfer
	// aliases kept for clients of the original service
	r.HandleFunc("/send", s.sweepHandler).Methods("POST")
	r.HandleFunc("/transfer", s.sweepHandler).Methods("POST")
	r.HandleFunc("/withdraw", s.sweepHandler).Methods("POST")
	return r
}

// Init sets up and starts the http/https server to service the RESTful API for the sweep service.
// If sslPort, sslCert and sslKey are informed, it will start an https (TLS) server on the
// specified endpoint.
func (s *Sweeper) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var err, errTLS error

	r := s.router()

	// the transfer call blocks until the network confirms, so the write timeout has to outlive
	// the confirm deadline
	writeTimeout := s.confirmTimeout + timeout*time.Second

	// setup shutdown channel
	s.sc = make(chan struct{})

	// start http server
	if port != "" {
		s.s = &http.Server{
			Handler: r,
			Addr:    endpoint + ":" + port,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: writeTimeout,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			err = s.s.ListenAndServe()
		}()

		log.Printf("Listening to API http requests on %s:%s", endpoint, port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		s.ss = &http.Server{
			Handler: r,
			Addr:    endpoint + ":" + sslPort,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: writeTimeout,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			errTLS = s.ss.ListenAndServeTLS(sslCert, sslKey)
		}()

		log.Printf("Listening to API https requests on %s:%s", endpoint, sslPort)
	}
	// wait for servers to be shutdown
	<-s.sc

	return fmt.Sprintf("shutdown http server:%v, https server:%v", err, errTLS)
}
