// Package application contém os casos de uso da aquisição de preço:
// Fetcher (cache read-through, single-flight, fallback e telemetria) e
// HealthReporter (status a partir da telemetria).
package application
