// Package connection provides retry and reconnection helpers.
//
// Discovery and broker connects fail for ordinary reasons: the directory is
// briefly unreachable, a core is restarting, or the discovered interface no
// longer answers. Callers retry with exponential backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Reset to 1s on success
//
// # Jitter
//
// To spread reconnects of many devices behind one core:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// Retry runs a bounded number of attempts. Manager keeps a connection up
// in the background and calls its connect function again after a loss.
package connection
