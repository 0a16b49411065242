// internal/protocol/uri.go
package protocol

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"label-service/internal/model"
)

// ParseURI turns a printer URI into a connection type and the
// configuration map CreateProtocol expects. Accepted forms:
//
//	tcp://host[:port]
//	usb://0x04f9:0x209c[/serial]
//	serial:///dev/rfcomm0[?baud=115200]
//	file:///dev/usb/lp0
//
// A bare absolute path is treated as a file URI.
func ParseURI(uri string) (model.ConnectionType, map[string]interface{}, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", nil, fmt.Errorf("printer URI is empty")
	}

	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		if strings.HasPrefix(uri, "/") {
			return model.ConnectionTypeFile, map[string]interface{}{"path": uri}, nil
		}
		return "", nil, fmt.Errorf("printer URI %q has no scheme", uri)
	}

	rest, rawQuery, _ := strings.Cut(rest, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", nil, fmt.Errorf("invalid query in printer URI %q: %w", uri, err)
	}

	switch strings.ToLower(scheme) {
	case "tcp":
		return parseTCP(rest)
	case "usb":
		return parseUSB(rest)
	case "serial":
		return parseSerial(rest, query)
	case "file":
		if rest == "" {
			return "", nil, fmt.Errorf("file URI needs a path")
		}
		return model.ConnectionTypeFile, map[string]interface{}{"path": rest}, nil
	default:
		return "", nil, fmt.Errorf("unsupported printer URI scheme %q", scheme)
	}
}

func parseTCP(rest string) (model.ConnectionType, map[string]interface{}, error) {
	rest = strings.TrimSuffix(rest, "/")
	config := map[string]interface{}{"host": rest, "port": DefaultTCPPort}

	if host, port, err := net.SplitHostPort(rest); err == nil {
		n, err := strconv.Atoi(port)
		if err != nil {
			return "", nil, fmt.Errorf("invalid TCP port %q", port)
		}
		config["host"] = host
		config["port"] = n
	}
	if config["host"] == "" {
		return "", nil, fmt.Errorf("TCP URI needs a host")
	}
	return model.ConnectionTypeTCP, config, nil
}

func parseUSB(rest string) (model.ConnectionType, map[string]interface{}, error) {
	ids, serialNumber, _ := strings.Cut(rest, "/")
	vendorID, productID, found := strings.Cut(ids, ":")
	if !found {
		return "", nil, fmt.Errorf("USB URI needs vendor:product, got %q", ids)
	}

	config := map[string]interface{}{
		"vendor_id":  vendorID,
		"product_id": productID,
	}
	if serialNumber != "" {
		config["serial_number"] = serialNumber
	}
	return model.ConnectionTypeUSB, config, nil
}

func parseSerial(rest string, query url.Values) (model.ConnectionType, map[string]interface{}, error) {
	if rest == "" {
		return "", nil, fmt.Errorf("serial URI needs a port")
	}

	config := map[string]interface{}{"port": rest}
	if baud := query.Get("baud"); baud != "" {
		n, err := strconv.Atoi(baud)
		if err != nil {
			return "", nil, fmt.Errorf("invalid baud rate %q", baud)
		}
		config["baud_rate"] = n
	}
	return model.ConnectionTypeSerial, config, nil
}
