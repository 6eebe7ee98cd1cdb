// Package client is the gRPC client of the kvgate gateway. It builds request
// envelopes, invokes kvgate.Gateway/Call and turns coded failures into
// *CodeError values.
package client
