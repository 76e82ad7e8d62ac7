// Package fetch downloads a thing's discovery document from the cloud
// discovery service.
//
// The request is a mutually authenticated HTTPS GET of
//
//	https://<endpoint>:8443/greengrass/discover/thing/<thing>
//
// and the body is returned as a freshly allocated buffer that the caller
// owns and may hand to discovery.Parse, which rewrites it in place.
package fetch
