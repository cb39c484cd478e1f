// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"bytes"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/packr"
)

const builtinSuffix = ".json"

var builtinProfiles = packr.NewBox("./builtin")

// BuiltinNames lists the profiles shipped with the package.
func BuiltinNames() []string {
	var names []string
	for _, file := range builtinProfiles.List() {
		if strings.HasSuffix(file, builtinSuffix) {
			names = append(names, strings.TrimSuffix(path.Base(file), builtinSuffix))
		}
	}
	sort.Strings(names)
	return names
}

// Builtin loads the shipped profile called name.
func Builtin(name string) (Profile, error) {
	data, err := builtinProfiles.Find(name + builtinSuffix)
	if err != nil {
		return Profile{}, errors.Wrapf(ErrNotFound, "builtin %q", name)
	}
	return Decode(bytes.NewReader(data))
}
