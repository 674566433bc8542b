// Package configs は、バイナリに埋め込むサンプル定義を提供します。
package configs

import _ "embed"

// Personas は、サンプルのキャラクターシート一覧です。
//
//go:embed personas.yaml
var Personas []byte
