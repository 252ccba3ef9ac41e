// Package infra carrega o catálogo estático de um arquivo JSON ou YAML.
package infra
