// Package diff computes path-addressed structural change sets between two
// discovery document snapshots. The computation is pure and deterministic:
// any two well-typed documents are diffable, there is no error channel, and
// concurrent invocations for different service pairs are safe.
package diff

import "github.com/ddd/discovery-tracker/discovery"

// Compute compares two document snapshots field by field and returns the
// change set for the given service. Entry order within the three sequences
// is not part of the contract.
//
// Top-level scalar fields are addressed by their bare name; every nested
// path carries a leading slash. Consumers depend on this split, so it is
// kept as-is.
func Compute(old, new *discovery.Document, service string) *ChangeSet {
	cs := &ChangeSet{
		Service:       service,
		Modifications: []Change{},
		Additions:     []Change{},
		Deletions:     []Change{},
	}

	compareTopLevel(cs, old, new)
	diffKeyed(cs, "/schemas", map[string]discovery.Schema(old.Schemas), map[string]discovery.Schema(new.Schemas), true, func(path string, oldS, newS discovery.Schema) {
		compareSchema(cs, path, oldS, newS)
	})
	diffKeyed(cs, "/resources", old.Resources, new.Resources, false, func(path string, oldR, newR *discovery.Resource) {
		diffKeyed(cs, path+"/methods", oldR.Methods, newR.Methods, false, func(methodPath string, oldM, newM *discovery.Method) {
			compareMethod(cs, methodPath, oldM, newM)
		})
	})

	return cs
}

func compareTopLevel(cs *ChangeSet, old, new *discovery.Document) {
	compareScalar(cs, "description", old.Description, new.Description)
	compareScalar(cs, "title", old.Title, new.Title)
	compareScalar(cs, "discoveryVersion", old.DiscoveryVersion, new.DiscoveryVersion)
	compareScalar(cs, "revision", old.Revision, new.Revision)
	compareScalar(cs, "ownerDomain", old.OwnerDomain, new.OwnerDomain)
	compareScalar(cs, "baseUrl", old.BaseURL, new.BaseURL)
	compareScalar(cs, "documentationLink", old.DocumentationLink, new.DocumentationLink)
}

// compareSchema recurses into a schema pair that share a key. A change of
// variant is not decomposed field by field; it is reported as one
// modification carrying both full schemas.
func compareSchema(cs *ChangeSet, path string, old, new discovery.Schema) {
	switch oldS := old.(type) {
	case *discovery.ObjectSchema:
		newS, ok := new.(*discovery.ObjectSchema)
		if !ok {
			cs.addModification(path, old, new)
			return
		}
		compareScalar(cs, path+"/type", oldS.Type, newS.Type)
		compareScalar(cs, path+"/id", oldS.ID, newS.ID)
		compareProperties(cs, path, oldS.Properties, newS.Properties)
	case *discovery.EnumSchema:
		newS, ok := new.(*discovery.EnumSchema)
		if !ok {
			cs.addModification(path, old, new)
			return
		}
		compareScalar(cs, path+"/type", oldS.Type, newS.Type)
		compareScalar(cs, path+"/id", oldS.ID, newS.ID)
		compareProperties(cs, path, oldS.Properties, newS.Properties)
		compareEnumeration(cs, path+"/enumeration", oldS.Enumeration, newS.Enumeration)
		compareStringSlice(cs, path+"/enumDescriptions", oldS.EnumDescriptions, newS.EnumDescriptions)
	}
}

// compareEnumeration treats the value sequence as always present: any
// element-level difference is one modification carrying both full
// sequences, preserving the positional coupling with the description list.
func compareEnumeration(cs *ChangeSet, path string, old, new []string) {
	if len(old) != len(new) {
		cs.addModification(path, old, new)
		return
	}
	for i := range old {
		if old[i] != new[i] {
			cs.addModification(path, old, new)
			return
		}
	}
}

func compareProperties(cs *ChangeSet, schemaPath string, old, new map[string]*discovery.Property) {
	diffKeyed(cs, schemaPath+"/properties", old, new, true, func(path string, oldP, newP *discovery.Property) {
		compareScalar(cs, path+"/type", oldP.Type, newP.Type)
		compareScalar(cs, path+"/$ref", oldP.Ref, newP.Ref)
		compareScalar(cs, path+"/format", oldP.Format, newP.Format)
		compareScalar(cs, path+"/description", oldP.Description, newP.Description)
	})
}

func compareMethod(cs *ChangeSet, path string, old, new *discovery.Method) {
	if old.ID != new.ID {
		cs.addModification(path+"/id", old.ID, new.ID)
	}
	if old.Path != new.Path {
		cs.addModification(path+"/path", old.Path, new.Path)
	}
	if old.HTTPMethod != new.HTTPMethod {
		cs.addModification(path+"/httpMethod", old.HTTPMethod, new.HTTPMethod)
	}
	compareScalar(cs, path+"/description", old.Description, new.Description)
	diffKeyed(cs, path+"/parameters", old.Parameters, new.Parameters, false, func(paramPath string, oldP, newP *discovery.Parameter) {
		compareScalar(cs, paramPath+"/type", oldP.Type, newP.Type)
		compareScalar(cs, paramPath+"/description", oldP.Description, newP.Description)
		compareScalar(cs, paramPath+"/required", oldP.Required, newP.Required)
		compareScalar(cs, paramPath+"/location", oldP.Location, newP.Location)
	})
	compareRef(cs, path+"/request", old.Request, new.Request)
	compareRef(cs, path+"/response", old.Response, new.Response)
	compareStringSlice(cs, path+"/scopes", old.Scopes, new.Scopes)
}
