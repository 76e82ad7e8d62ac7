// Package discovery extracts broker connection parameters from a Greengrass
// discovery document.
//
// The cloud directory answers a discovery request with a JSON document that
// lists groups, the core devices of each group, the connectivity interfaces
// (host and port) of each core, and the group's certificate authorities:
//
//	{"GGGroups": [{
//	    "GGGroupId": "group-id",
//	    "Cores": [{
//	        "thingArn": "arn:aws:iot:...:thing/core",
//	        "Connectivity": [
//	            {"Id": "1", "HostAddress": "192.0.2.10", "PortNumber": 8883, "Metadata": ""}
//	        ]
//	    }],
//	    "CAs": ["-----BEGIN CERTIFICATE-----\n...\n-----END CERTIFICATE-----\n"]
//	}]}
//
// Parse walks a flat token array over the document instead of decoding it,
// and writes its results back into the same buffer:
//   - the first CA of the selected group is unescaped in place, every two-byte
//     "\n" sequence becomes one line feed so the result is valid PEM
//   - the byte after the selected host address is overwritten with NUL
//
// Result fields alias the caller's buffer. The buffer must outlive the Result
// and is no longer a valid JSON document afterwards. Parse must not be called
// twice on the same buffer; distinct buffers may be parsed concurrently.
//
// # Selection
//
// AutoSelect accepts the first group and core in the document and returns the
// first connectivity interface whose address passes IsValidAddress. Manual
// selects the group by GGGroupId, then the core by thingArn inside that group,
// then the Nth interface in document order.
package discovery
