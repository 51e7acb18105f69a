package abc

import (
	"github.com/wippyai/abcdump/errors"
)

// Instance is the instance side of a class.
type Instance struct {
	Interfaces  []uint32
	Traits      []Trait
	Name        uint32
	Super       uint32
	ProtectedNs uint32
	Init        uint32 // instance initializer (constructor)
	Flags       InstanceFlags
}

// IsInterface reports whether the instance declares an interface.
func (in *Instance) IsInterface() bool { return in.Flags&ClassInterface != 0 }

// IsSealed reports whether instances reject dynamic properties.
func (in *Instance) IsSealed() bool { return in.Flags&ClassSealed != 0 }

// IsFinal reports whether the class cannot be extended.
func (in *Instance) IsFinal() bool { return in.Flags&ClassFinal != 0 }

// Class is the static side of a class. It shares its index with the
// matching Instance.
type Class struct {
	Traits []Trait
	Init   uint32 // static initializer
}

// Script is a top-level unit with its package-level traits.
type Script struct {
	Traits []Trait
	Init   uint32
}

// classCount is the number of classes once the instance table length
// has been read. Class traits may refer to any of them.
func (d *decoder) classCount() int {
	return cap(d.f.Instances)
}

func (d *decoder) decodeClasses() error {
	n, err := d.count("class", 5)
	if err != nil {
		return errors.WithPath(err, "instance_info")
	}
	d.f.Instances = make([]Instance, 0, n)
	for i := 0; i < n; i++ {
		var in Instance
		if err := d.decodeInstance(&in); err != nil {
			return errors.WithPath(err, "instance_info", itoa(i))
		}
		d.f.Instances = append(d.f.Instances, in)
	}

	d.f.Classes = make([]Class, n)
	for i := range d.f.Classes {
		c := &d.f.Classes[i]
		if c.Init, err = d.method(false); err != nil {
			return errors.WithPath(err, "class_info", itoa(i))
		}
		if c.Traits, err = d.decodeTraits(); err != nil {
			return errors.WithPath(err, "class_info", itoa(i))
		}
	}
	return nil
}

func (d *decoder) decodeInstance(in *Instance) error {
	var err error
	if in.Name, err = d.multiname(); err != nil {
		return err
	}
	if in.Super, err = d.multiname(); err != nil {
		return err
	}
	flags, err := d.u8("instance flags")
	if err != nil {
		return err
	}
	in.Flags = InstanceFlags(flags)
	if in.Flags&ClassProtectedNs != 0 {
		if in.ProtectedNs, err = d.index("namespace", len(d.f.Pool.Namespaces)); err != nil {
			return err
		}
	}
	count, err := d.count("interface", 1)
	if err != nil {
		return err
	}
	in.Interfaces = make([]uint32, count)
	for j := range in.Interfaces {
		if in.Interfaces[j], err = d.multiname(); err != nil {
			return err
		}
	}
	if in.Init, err = d.method(false); err != nil {
		return err
	}
	in.Traits, err = d.decodeTraits()
	return err
}

func (d *decoder) decodeScripts() error {
	n, err := d.count("script", 2)
	if err != nil {
		return err
	}
	d.f.Scripts = make([]Script, n)
	for i := range d.f.Scripts {
		s := &d.f.Scripts[i]
		if s.Init, err = d.method(true); err != nil {
			return errors.WithPath(err, itoa(i))
		}
		if s.Traits, err = d.decodeTraits(); err != nil {
			return errors.WithPath(err, itoa(i))
		}
	}
	return nil
}
