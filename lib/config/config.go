// Package config provides helper functionality to read the sweep service configuration from JSON
// config files or OS ENV variables. The default configuration can be overriden first by:
//
// - a valid JSON config file (see cmd/conf.json for a sample) and then by
//
// - OS ENV variables: prefixed with SWEEP_ (ie. SWEEP_PORT, SWEEP_TREASURY, ...). All OS ENV
// variables should be valid strings, except for SWEEP_NODES which should be a string with a valid
// JSON format. For example:
// # export SWEEP_NODES='[{"name":"ropsten","node":"https://ropsten.infura.io/v3/project","secret":""}]'
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Default configuration variables.
var (
	RestfulEPDefault = ""
	PortDefault      = "3030"
	SSLPortDefault   = ""
	SSLCertDefault   = ""
	SSLKeyDefault    = ""
	MbTypeDefault    = "amqp"
	MbConnDefault    = "" // eventing disabled unless a broker uri is configured
	NodesDefault     = []NodeConfig{
		{Name: "ropsten", Node: "https://ropsten.infura.io/v3/NoPSZJipdt0sqtNlaJq5", Secret: ""},
		{Name: "ropsten-backup", Node: "https://ropsten.rpc.example.org", Secret: ""},
	}
	SeedDefault          = ""
	TreasuryDefault      = ""
	DefaultAmountDefault = "0.01"  // ether sent when a request does not carry a valid amount
	FeeReserveDefault    = "0.002" // ether withheld so the account can always pay fees
	// ProbeTimeoutDefault and ConfirmTimeoutDefault are in seconds.
	ProbeTimeoutDefault   = 5
	ConfirmTimeoutDefault = 300
)

// NodeConfig defines one endpoint candidate. Candidates are probed in slice order, so the first
// entry is the preferred node. Node contains the url (ie. https://localhost:8545) and Secret is an
// optional field when Basic Authentication is required by the blockchain server.
type NodeConfig struct {
	Name   string `json:"name"`
	Node   string `json:"node"`
	Secret string `json:"secret"`
}

// ServiceConfig contains the required fields for the sweep microservice: API endpoint, ports, SSL
// cert and key, message broker type and url, the ordered endpoint candidates, the seed for the HD
// wallet signer, the fallback destination and amount, the fee reserve and the probe/confirm
// timeouts.
type ServiceConfig struct {
	RestfulEndpoint string       `json:"endpoint"`
	Port            string       `json:"port"`
	SSLPort         string       `json:"sslport"`
	SSLCert         string       `json:"sslcert"`
	SSLKey          string       `json:"sslkey"`
	MbType          string       `json:"mbtype"`
	MbConn          string       `json:"mbconn"`
	Nodes           []NodeConfig `json:"nodes"`
	Seed            string       `json:"hdseed"`
	Treasury        string       `json:"treasury"`
	DefaultAmount   string       `json:"defaultAmount"`
	FeeReserve      string       `json:"feeReserve"`
	ProbeTimeout    int          `json:"probeTimeout"`
	ConfirmTimeout  int          `json:"confirmTimeout"`
}

// ExtractConfiguration reads from the given JSON filename and returns the ServiceConfig or an
// error otherwise.
func ExtractConfiguration(filename string) (ServiceConfig, error) {
	conf := ServiceConfig{
		RestfulEndpoint: RestfulEPDefault,
		Port:            PortDefault,
		SSLPort:         SSLPortDefault,
		SSLCert:         SSLCertDefault,
		SSLKey:          SSLKeyDefault,
		MbType:          MbTypeDefault,
		MbConn:          MbConnDefault,
		Nodes:           NodesDefault,
		Seed:            SeedDefault,
		Treasury:        TreasuryDefault,
		DefaultAmount:   DefaultAmountDefault,
		FeeReserve:      FeeReserveDefault,
		ProbeTimeout:    ProbeTimeoutDefault,
		ConfirmTimeout:  ConfirmTimeoutDefault,
	}
	// read from config file first
	if filename != "" {
		file, err := os.Open(filename)
		if err != nil {
			log.Println("Configuration file not found.")
			return conf, err
		}
		defer file.Close()
		if err = json.NewDecoder(file).Decode(&conf); err != nil {
			return conf, err
		}
	}
	// then override config values with OS ENV variables
	var tmp string
	if tmp = os.Getenv("SWEEP_ENDPOINT"); tmp != "" {
		conf.RestfulEndpoint = tmp
	}
	if tmp = os.Getenv("SWEEP_PORT"); tmp != "" {
		conf.Port = tmp
	}
	if tmp = os.Getenv("SWEEP_SSLPORT"); tmp != "" {
		conf.SSLPort = tmp
	}
	if tmp = os.Getenv("SWEEP_SSLCERT"); tmp != "" {
		conf.SSLCert = tmp
	}
	if tmp = os.Getenv("SWEEP_SSLKEY"); tmp != "" {
		conf.SSLKey = tmp
	}
	if tmp = os.Getenv("SWEEP_MBTYPE"); tmp != "" {
		conf.MbType = tmp
	}
	if tmp = os.Getenv("SWEEP_MBCONN"); tmp != "" {
		conf.MbConn = tmp
	}
	if tmp = os.Getenv("SWEEP_NODES"); tmp != "" {
		if err := json.Unmarshal([]byte(tmp), &conf.Nodes); err != nil {
			log.Println("Error reading endpoint candidates from OS ENV SWEEP_NODES.")
			return conf, err
		}
	}
	if tmp = os.Getenv("SWEEP_SEED"); tmp != "" {
		conf.Seed = tmp
	}
	if tmp = os.Getenv("SWEEP_TREASURY"); tmp != "" {
		conf.Treasury = tmp
	}
	if tmp = os.Getenv("SWEEP_AMOUNT"); tmp != "" {
		conf.DefaultAmount = tmp
	}
	if tmp = os.Getenv("SWEEP_RESERVE"); tmp != "" {
		conf.FeeReserve = tmp
	}
	if tmp = os.Getenv("SWEEP_PROBETIMEOUT"); tmp != "" {
		n, err := strconv.Atoi(tmp)
		if err != nil {
			log.Println("Error reading probe timeout from OS ENV SWEEP_PROBETIMEOUT.")
			return conf, err
		}
		conf.ProbeTimeout = n
	}
	if tmp = os.Getenv("SWEEP_CONFIRMTIMEOUT"); tmp != "" {
		n, err := strconv.Atoi(tmp)
		if err != nil {
			log.Println("Error reading confirm timeout from OS ENV SWEEP_CONFIRMTIMEOUT.")
			return conf, err
		}
		conf.ConfirmTimeout = n
	}
	return conf, nil
}
