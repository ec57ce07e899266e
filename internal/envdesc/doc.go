// Package envdesc implements the declarative development-environment
// descriptor.
//
// A descriptor (devenv.yaml) declares the toolchain a project needs —
// compiler, build tool, formatter, linter, language server — together with
// linked libraries and the environment variables the dev shell should
// export. The descriptor is YAML, validated against an embedded JSON schema
// before use.
//
// The Checker verifies the host against a descriptor: each declared tool
// must resolve on PATH, optional semver constraints are checked against the
// tool's --version output, and declared libraries are resolved through
// pkg-config to collect their library directories. Export values may use
// the ${libdirs} token, which expands to the colon-joined library
// directories — the dynamic-library search path of the declared stack.
package envdesc
