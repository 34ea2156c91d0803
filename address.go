package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog/log"
)

const sourceAddressLookup = "supplierlookup"

// AddressLookup resolves a street address to a grid company number.
type AddressLookup interface {
	LookupGridCompanyID(ctx context.Context, address string) (string, error)
}

// SupplierLookupService queries Green Power Denmark's grid company lookup.
type SupplierLookupService struct {
	Client *httptransport.Runtime
}

// NewSupplierLookupService creates a lookup client for host.
func NewSupplierLookupService(rt http.RoundTripper, host string) *SupplierLookupService {
	transport := httptransport.New(host, "/", []string{"https"})
	transport.Transport = rt
	return &SupplierLookupService{Client: transport}
}

type supplierLookupResponse struct {
	Name string `json:"name"`
	Def  string `json:"def"`
}

// LookupGridCompanyID returns the grid company number ("def") serving address.
func (s *SupplierLookupService) LookupGridCompanyID(ctx context.Context, address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: empty address", ErrAddressNotFound)
	}

	params := runtime.ClientRequestWriterFunc(func(req runtime.ClientRequest, _ strfmt.Registry) error {
		return req.SetPathParam("address", address)
	})
	reader := runtime.ClientResponseReaderFunc(func(resp runtime.ClientResponse, consumer runtime.Consumer) (interface{}, error) {
		switch resp.Code() {
		case http.StatusOK:
			var payload supplierLookupResponse
			if err := consumer.Consume(resp.Body(), &payload); err != nil {
				return nil, err
			}
			return &payload, nil
		case http.StatusNotFound, http.StatusNoContent:
			return &supplierLookupResponse{}, nil
		default:
			return nil, runtime.NewAPIError("supplier lookup", resp.Message(), resp.Code())
		}
	})

	start := time.Now()
	result, err := s.Client.Submit(&runtime.ClientOperation{
		ID:                 "SupplierLookup",
		Method:             http.MethodGet,
		PathPattern:        "/api/supplierlookup/{address}",
		ProducesMediaTypes: []string{"application/json"},
		ConsumesMediaTypes: []string{"application/json"},
		Schemes:            []string{"https"},
		Params:             params,
		Reader:             reader,
		Context:            ctx,
	})
	observeUpstream(sourceAddressLookup, start, err)
	if err != nil {
		return "", fmt.Errorf("%w: failed to look up address: %v", ErrUpstreamUnavailable, err)
	}

	payload := result.(*supplierLookupResponse)
	if payload.Def == "" {
		return "", fmt.Errorf("%w: %s", ErrAddressNotFound, address)
	}

	log.Debug().Str("address", address).Str("company", payload.Name).Str("def", payload.Def).Msg("address resolved")
	return payload.Def, nil
}
