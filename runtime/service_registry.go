// Package runtime wires the long running services of the fork choice node
// together and controls their lifecycle.
package runtime

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "registry")

// Service is a component with a background lifecycle, such as the blockchain
// service or the metrics server.
type Service interface {
	// Start spawns any goroutines required by the service.
	Start()
	// Stop terminates all goroutines belonging to the service,
	// blocking until they are all terminated.
	Stop() error
	// Status returns error if the service is not considered healthy.
	Status() error
}

// ServiceRegistry holds one service per concrete type. Services start in
// registration order and stop in reverse, so a service may depend on any
// service registered before it.
type ServiceRegistry struct {
	services     map[reflect.Type]Service
	serviceTypes []reflect.Type
}

// NewServiceRegistry returns an empty registry.
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[reflect.Type]Service),
	}
}

// StartAll starts every service in its own goroutine.
func (s *ServiceRegistry) StartAll() {
	log.WithField("count", len(s.serviceTypes)).Debug("Starting services")
	for _, kind := range s.serviceTypes {
		log.WithField("service", kind.String()).Debug("Starting service")
		go s.services[kind].Start()
	}
}

// StopAll stops every service, last registered first. A failing service does
// not prevent the others from stopping; the first error is returned.
func (s *ServiceRegistry) StopAll() error {
	var firstErr error
	for i := len(s.serviceTypes) - 1; i >= 0; i-- {
		kind := s.serviceTypes[i]
		if err := s.services[kind].Stop(); err != nil {
			log.WithError(err).WithField("service", kind.String()).Error("Could not stop service")
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "could not stop %v", kind)
			}
		}
	}
	return firstErr
}

// Statuses returns the Status of every registered service keyed by its type.
func (s *ServiceRegistry) Statuses() map[reflect.Type]error {
	m := make(map[reflect.Type]error, len(s.serviceTypes))
	for _, kind := range s.serviceTypes {
		m[kind] = s.services[kind].Status()
	}
	return m
}

// RegisterService adds a service to the registry. Registering a second
// service of the same type is an error.
func (s *ServiceRegistry) RegisterService(service Service) error {
	if service == nil {
		return errors.New("cannot register nil service")
	}
	kind := reflect.TypeOf(service)
	if _, exists := s.services[kind]; exists {
		return errors.Errorf("service already exists: %v", kind)
	}
	s.services[kind] = service
	s.serviceTypes = append(s.serviceTypes, kind)
	return nil
}

// FetchService sets the value pointed to by service to the registered service
// of the same type. service must be a pointer to a pointer type, for example
// **blockchain.Service.
func (s *ServiceRegistry) FetchService(service interface{}) error {
	if reflect.TypeOf(service).Kind() != reflect.Ptr {
		return errors.Errorf("input must be of pointer type, received value type instead: %T", service)
	}
	element := reflect.ValueOf(service).Elem()
	running, ok := s.services[element.Type()]
	if !ok {
		return errors.Errorf("unknown service: %T", service)
	}
	element.Set(reflect.ValueOf(running))
	return nil
}
