// Package cert loads the X.509 material used to talk to the discovery
// service and to Greengrass cores.
//
// Device credentials (certificate and private key) and the cloud root CA are
// read from PEM files. The group CA of a core arrives inside the discovery
// document and is turned into a certificate pool with PoolFromPEM.
package cert
