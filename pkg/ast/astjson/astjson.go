// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package astjson marshals and unmarshals an ast.SourceFile to and from
// JSON, per spec.md §6.1: every node carries a "_type" discriminator field
// naming its concrete Go type, and the round trip is lossless (spec.md §8's
// "parse -> marshal -> unmarshal -> re-marshal yields byte-identical JSON"
// property) since every field of every node variant is carried across.
package astjson

import (
	"fmt"

	"github.com/segmentio/encoding/json"
	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/token"
)

type obj = map[string]any

// Marshal renders sf as indented JSON.
func Marshal(sf *ast.SourceFile) ([]byte, error) {
	return json.MarshalIndent(encodeSourceFile(sf), "", "  ")
}

// Unmarshal parses JSON produced by Marshal back into a SourceFile.
func Unmarshal(data []byte) (*ast.SourceFile, error) {
	var raw obj
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	return decodeSourceFile(raw)
}

func posOf(n ast.Node) obj {
	p := n.Pos()
	return obj{"line": p.Line, "column": p.Column}
}

func attrsOf(n ast.Node) []obj {
	attrs := n.Attrs()
	if len(attrs) == 0 {
		return nil
	}

	out := make([]obj, len(attrs))
	for i, a := range attrs {
		out[i] = obj{"name": a.Name, "value": a.Value}
	}

	return out
}

func wrap(typ string, n ast.Node, fields obj) obj {
	fields["_type"] = typ
	fields["pos"] = posOf(n)

	if a := attrsOf(n); a != nil {
		fields["attrs"] = a
	}

	return fields
}

func applyBase(n interface{ SetPos(token.Position); SetAttrs([]ast.Attribute) }, m obj) {
	if p, ok := m["pos"].(map[string]any); ok {
		line, _ := p["line"].(float64)
		col, _ := p["column"].(float64)
		n.SetPos(token.Position{Line: int(line), Column: int(col)})
	}

	if raw, ok := m["attrs"].([]any); ok {
		attrs := make([]ast.Attribute, 0, len(raw))

		for _, r := range raw {
			am, ok := r.(map[string]any)
			if !ok {
				continue
			}

			name, _ := am["name"].(string)
			value, _ := am["value"].(string)
			attrs = append(attrs, ast.Attribute{Name: name, Value: value})
		}

		n.SetAttrs(attrs)
	}
}

func typeOf(m obj) string {
	t, _ := m["_type"].(string)
	return t
}

func asObj(v any) obj {
	m, _ := v.(map[string]any)
	return m
}

func asObjSlice(v any) []obj {
	raw, _ := v.([]any)
	out := make([]obj, 0, len(raw))

	for _, r := range raw {
		out = append(out, asObj(r))
	}

	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asUint(v any) uint {
	f, _ := v.(float64)
	return uint(f)
}

func asUint64(v any) uint64 {
	f, _ := v.(float64)
	return uint64(f)
}

func asInt(v any) int {
	f, _ := v.(float64)
	return int(f)
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// ---- SourceFile / Module ----

func encodeSourceFile(sf *ast.SourceFile) obj {
	mods := make([]obj, len(sf.Modules))
	for i, m := range sf.Modules {
		mods[i] = encodeModule(m)
	}

	return wrap("SourceFile", sf, obj{"filename": sf.Filename, "modules": mods})
}

func decodeSourceFile(m obj) (*ast.SourceFile, error) {
	sf := &ast.SourceFile{Filename: asString(m["filename"])}
	applyBase(sf, m)

	for _, mm := range asObjSlice(m["modules"]) {
		mod, err := decodeModule(mm)
		if err != nil {
			return nil, err
		}

		sf.Modules = append(sf.Modules, mod)
	}

	return sf, nil
}

func encodeModuleParam(p ast.ModuleParam) obj {
	o := obj{"name": p.Name}
	if p.Value != nil {
		o["value"] = encodeExpr(p.Value)
	}

	if p.Range != nil {
		o["range"] = encodeRange(p.Range)
	}

	return o
}

func decodeModuleParam(m obj) (ast.ModuleParam, error) {
	p := ast.ModuleParam{Name: asString(m["name"])}

	if v, ok := m["value"]; ok {
		e, err := decodeExpr(asObj(v))
		if err != nil {
			return p, err
		}

		p.Value = e
	}

	if r, ok := m["range"]; ok {
		rng, err := decodeRange(asObj(r))
		if err != nil {
			return p, err
		}

		p.Range = rng
	}

	return p, nil
}

func encodeModule(mod *ast.Module) obj {
	params := make([]obj, len(mod.Params))
	for i, p := range mod.Params {
		params[i] = encodeModuleParam(p)
	}

	ports := make([]obj, len(mod.Ports))
	for i, p := range mod.Ports {
		ports[i] = encodePortDecl(p)
	}

	body := make([]obj, len(mod.Body))
	for i, item := range mod.Body {
		body[i] = encodeNode(item)
	}

	return wrap("Module", mod, obj{
		"name": mod.Name, "params": params, "ports": ports, "body": body,
	})
}

func decodeModule(m obj) (*ast.Module, error) {
	mod := &ast.Module{Name: asString(m["name"])}
	applyBase(mod, m)

	for _, pm := range asObjSlice(m["params"]) {
		p, err := decodeModuleParam(pm)
		if err != nil {
			return nil, err
		}

		mod.Params = append(mod.Params, p)
	}

	for _, pm := range asObjSlice(m["ports"]) {
		p, err := decodePortDecl(pm)
		if err != nil {
			return nil, err
		}

		mod.Ports = append(mod.Ports, p)
	}

	for _, im := range asObjSlice(m["body"]) {
		n, err := decodeNode(im)
		if err != nil {
			return nil, err
		}

		item, ok := n.(ast.Item)
		if !ok {
			return nil, fmt.Errorf("astjson: node %q is not a module-body item", typeOf(im))
		}

		mod.Body = append(mod.Body, item)
	}

	return mod, nil
}

func encodeRange(r *ast.Range) obj {
	o := obj{}
	if r.MSB != nil {
		o["msb"] = encodeExpr(r.MSB)
	}

	if r.LSB != nil {
		o["lsb"] = encodeExpr(r.LSB)
	}

	return o
}

func decodeRange(m obj) (*ast.Range, error) {
	if m == nil {
		return nil, nil
	}

	r := &ast.Range{}

	if v, ok := m["msb"]; ok {
		e, err := decodeExpr(asObj(v))
		if err != nil {
			return nil, err
		}

		r.MSB = e
	}

	if v, ok := m["lsb"]; ok {
		e, err := decodeExpr(asObj(v))
		if err != nil {
			return nil, err
		}

		r.LSB = e
	}

	return r, nil
}

func encodeDim(d ast.Dim) obj {
	return obj{"msb": encodeExpr(d.MSB), "lsb": encodeExpr(d.LSB)}
}

func decodeDim(m obj) (ast.Dim, error) {
	msb, err := decodeExpr(asObj(m["msb"]))
	if err != nil {
		return ast.Dim{}, err
	}

	lsb, err := decodeExpr(asObj(m["lsb"]))
	if err != nil {
		return ast.Dim{}, err
	}

	return ast.Dim{MSB: msb, LSB: lsb}, nil
}

// ---- Node dispatch (module-body items, generate items, Begin.Decls) ----

func encodeNode(n ast.Node) obj {
	switch v := n.(type) {
	case ast.Expression:
		return encodeExpr(v)
	case ast.Statement:
		return encodeStmt(v)
	case *ast.NetDecl:
		return encodeNetDecl(v)
	case *ast.ParamDecl:
		return encodeParamDecl(v)
	case *ast.PortDecl:
		return encodePortDecl(v)
	case *ast.GenvarDecl:
		return encodeGenvarDecl(v)
	case *ast.Task:
		return encodeTask(v)
	case *ast.Function:
		return encodeFunction(v)
	case *ast.ContinuousAssign:
		return encodeContinuousAssign(v)
	case *ast.AlwaysBlock:
		return encodeAlwaysBlock(v)
	case *ast.InitialBlock:
		return encodeInitialBlock(v)
	case *ast.Generate:
		return encodeGenerate(v)
	default:
		return obj{"_type": fmt.Sprintf("Unsupported(%T)", n)}
	}
}

func decodeNode(m obj) (ast.Node, error) {
	switch typeOf(m) {
	case "NetDecl":
		return decodeNetDecl(m)
	case "ParamDecl":
		return decodeParamDecl(m)
	case "PortDecl":
		return decodePortDecl(m)
	case "GenvarDecl":
		return decodeGenvarDecl(m)
	case "Task":
		return decodeTask(m)
	case "Function":
		return decodeFunction(m)
	case "ContinuousAssign":
		return decodeContinuousAssign(m)
	case "AlwaysBlock":
		return decodeAlwaysBlock(m)
	case "InitialBlock":
		return decodeInitialBlock(m)
	case "Generate":
		return decodeGenerate(m)
	default:
		if isExprType(typeOf(m)) {
			return decodeExpr(m)
		}

		return decodeStmt(m)
	}
}

// ---- Declarations ----

func encodeNetDecl(n *ast.NetDecl) obj {
	dims := make([]obj, len(n.UnpackedDims))
	for i, d := range n.UnpackedDims {
		dims[i] = encodeDim(d)
	}

	f := obj{
		"netType": int(n.NetType), "name": n.Name, "unpackedDims": dims, "isPort": n.IsPort,
	}

	if n.Range != nil {
		f["range"] = encodeRange(n.Range)
	}

	if n.Init != nil {
		f["init"] = encodeExpr(n.Init)
	}

	return wrap("NetDecl", n, f)
}

func decodeNetDecl(m obj) (*ast.NetDecl, error) {
	n := &ast.NetDecl{
		NetType: ast.NetType(asInt(m["netType"])),
		Name:    asString(m["name"]),
		IsPort:  asBool(m["isPort"]),
	}
	applyBase(n, m)

	if r, ok := m["range"]; ok {
		rng, err := decodeRange(asObj(r))
		if err != nil {
			return nil, err
		}

		n.Range = rng
	}

	if v, ok := m["init"]; ok {
		e, err := decodeExpr(asObj(v))
		if err != nil {
			return nil, err
		}

		n.Init = e
	}

	for _, dm := range asObjSlice(m["unpackedDims"]) {
		d, err := decodeDim(dm)
		if err != nil {
			return nil, err
		}

		n.UnpackedDims = append(n.UnpackedDims, d)
	}

	return n, nil
}

func encodeParamDecl(n *ast.ParamDecl) obj {
	f := obj{"name": n.Name, "value": encodeExpr(n.Value), "isLocalparam": n.IsLocalparam}
	if n.Range != nil {
		f["range"] = encodeRange(n.Range)
	}

	return wrap("ParamDecl", n, f)
}

func decodeParamDecl(m obj) (*ast.ParamDecl, error) {
	v, err := decodeExpr(asObj(m["value"]))
	if err != nil {
		return nil, err
	}

	n := &ast.ParamDecl{Name: asString(m["name"]), Value: v, IsLocalparam: asBool(m["isLocalparam"])}
	applyBase(n, m)

	if r, ok := m["range"]; ok {
		rng, err := decodeRange(asObj(r))
		if err != nil {
			return nil, err
		}

		n.Range = rng
	}

	return n, nil
}

func encodePortDecl(n *ast.PortDecl) obj {
	f := obj{"direction": int(n.Direction), "netType": int(n.NetType), "name": n.Name}
	if n.Range != nil {
		f["range"] = encodeRange(n.Range)
	}

	return wrap("PortDecl", n, f)
}

func decodePortDecl(m obj) (*ast.PortDecl, error) {
	n := &ast.PortDecl{
		Direction: ast.Direction(asInt(m["direction"])),
		NetType:   ast.NetType(asInt(m["netType"])),
		Name:      asString(m["name"]),
	}
	applyBase(n, m)

	if r, ok := m["range"]; ok {
		rng, err := decodeRange(asObj(r))
		if err != nil {
			return nil, err
		}

		n.Range = rng
	}

	return n, nil
}

func encodeGenvarDecl(n *ast.GenvarDecl) obj {
	return wrap("GenvarDecl", n, obj{"name": n.Name})
}

func decodeGenvarDecl(m obj) (*ast.GenvarDecl, error) {
	n := &ast.GenvarDecl{Name: asString(m["name"])}
	applyBase(n, m)

	return n, nil
}

func encodeTFPort(p ast.TaskOrFunctionPort) obj {
	o := obj{"direction": int(p.Direction), "name": p.Name}
	if p.Range != nil {
		o["range"] = encodeRange(p.Range)
	}

	return o
}

func decodeTFPort(m obj) (ast.TaskOrFunctionPort, error) {
	p := ast.TaskOrFunctionPort{Direction: ast.Direction(asInt(m["direction"])), Name: asString(m["name"])}

	if r, ok := m["range"]; ok {
		rng, err := decodeRange(asObj(r))
		if err != nil {
			return p, err
		}

		p.Range = rng
	}

	return p, nil
}

func encodeDeclList(nodes []ast.Node) []obj {
	out := make([]obj, len(nodes))
	for i, n := range nodes {
		out[i] = encodeNode(n)
	}

	return out
}

func decodeDeclList(ms []obj) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(ms))

	for _, m := range ms {
		n, err := decodeNode(m)
		if err != nil {
			return nil, err
		}

		out = append(out, n)
	}

	return out, nil
}

func encodeTask(n *ast.Task) obj {
	ports := make([]obj, len(n.Ports))
	for i, p := range n.Ports {
		ports[i] = encodeTFPort(p)
	}

	f := obj{
		"name": n.Name, "automatic": n.Automatic, "ports": ports,
		"decls": encodeDeclList(n.Decls),
	}

	if n.Body != nil {
		f["body"] = encodeStmt(n.Body)
	}

	return wrap("Task", n, f)
}

func decodeTask(m obj) (*ast.Task, error) {
	n := &ast.Task{Name: asString(m["name"]), Automatic: asBool(m["automatic"])}
	applyBase(n, m)

	for _, pm := range asObjSlice(m["ports"]) {
		p, err := decodeTFPort(pm)
		if err != nil {
			return nil, err
		}

		n.Ports = append(n.Ports, p)
	}

	decls, err := decodeDeclList(asObjSlice(m["decls"]))
	if err != nil {
		return nil, err
	}

	n.Decls = decls

	if b, ok := m["body"]; ok {
		s, err := decodeStmt(asObj(b))
		if err != nil {
			return nil, err
		}

		n.Body = s
	}

	return n, nil
}

func encodeFunction(n *ast.Function) obj {
	ports := make([]obj, len(n.Ports))
	for i, p := range n.Ports {
		ports[i] = encodeTFPort(p)
	}

	f := obj{
		"name": n.Name, "automatic": n.Automatic, "ports": ports,
		"decls": encodeDeclList(n.Decls),
	}

	if n.ReturnRange != nil {
		f["returnRange"] = encodeRange(n.ReturnRange)
	}

	if n.Body != nil {
		f["body"] = encodeStmt(n.Body)
	}

	return wrap("Function", n, f)
}

func decodeFunction(m obj) (*ast.Function, error) {
	n := &ast.Function{Name: asString(m["name"]), Automatic: asBool(m["automatic"])}
	applyBase(n, m)

	if r, ok := m["returnRange"]; ok {
		rng, err := decodeRange(asObj(r))
		if err != nil {
			return nil, err
		}

		n.ReturnRange = rng
	}

	for _, pm := range asObjSlice(m["ports"]) {
		p, err := decodeTFPort(pm)
		if err != nil {
			return nil, err
		}

		n.Ports = append(n.Ports, p)
	}

	decls, err := decodeDeclList(asObjSlice(m["decls"]))
	if err != nil {
		return nil, err
	}

	n.Decls = decls

	if b, ok := m["body"]; ok {
		s, err := decodeStmt(asObj(b))
		if err != nil {
			return nil, err
		}

		n.Body = s
	}

	return n, nil
}

// ---- Module-level items ----

func encodeContinuousAssign(n *ast.ContinuousAssign) obj {
	return wrap("ContinuousAssign", n, obj{"lhs": encodeExpr(n.Lhs), "rhs": encodeExpr(n.Rhs)})
}

func decodeContinuousAssign(m obj) (*ast.ContinuousAssign, error) {
	lhs, err := decodeExpr(asObj(m["lhs"]))
	if err != nil {
		return nil, err
	}

	rhs, err := decodeExpr(asObj(m["rhs"]))
	if err != nil {
		return nil, err
	}

	n := &ast.ContinuousAssign{Lhs: lhs, Rhs: rhs}
	applyBase(n, m)

	return n, nil
}

func encodeSensitivity(s ast.SensitivityEntry) obj {
	return obj{"signal": encodeExpr(s.Signal), "edge": int(s.Edge)}
}

func decodeSensitivity(m obj) (ast.SensitivityEntry, error) {
	sig, err := decodeExpr(asObj(m["signal"]))
	if err != nil {
		return ast.SensitivityEntry{}, err
	}

	return ast.SensitivityEntry{Signal: sig, Edge: ast.Edge(asInt(m["edge"]))}, nil
}

func encodeAlwaysBlock(n *ast.AlwaysBlock) obj {
	sens := make([]obj, len(n.Sensitivity))
	for i, s := range n.Sensitivity {
		sens[i] = encodeSensitivity(s)
	}

	f := obj{"sensitivity": sens, "isStar": n.IsStar}
	if n.Body != nil {
		f["body"] = encodeStmt(n.Body)
	}

	return wrap("AlwaysBlock", n, f)
}

func decodeAlwaysBlock(m obj) (*ast.AlwaysBlock, error) {
	n := &ast.AlwaysBlock{IsStar: asBool(m["isStar"])}
	applyBase(n, m)

	for _, sm := range asObjSlice(m["sensitivity"]) {
		s, err := decodeSensitivity(sm)
		if err != nil {
			return nil, err
		}

		n.Sensitivity = append(n.Sensitivity, s)
	}

	if b, ok := m["body"]; ok {
		s, err := decodeStmt(asObj(b))
		if err != nil {
			return nil, err
		}

		n.Body = s
	}

	return n, nil
}

func encodeInitialBlock(n *ast.InitialBlock) obj {
	f := obj{}
	if n.Body != nil {
		f["body"] = encodeStmt(n.Body)
	}

	return wrap("InitialBlock", n, f)
}

func decodeInitialBlock(m obj) (*ast.InitialBlock, error) {
	n := &ast.InitialBlock{}
	applyBase(n, m)

	if b, ok := m["body"]; ok {
		s, err := decodeStmt(asObj(b))
		if err != nil {
			return nil, err
		}

		n.Body = s
	}

	return n, nil
}

func encodePortConnection(c ast.PortConnection) obj {
	o := obj{"name": c.Name}
	if c.Expr != nil {
		o["expr"] = encodeExpr(c.Expr)
	}

	return o
}

func decodePortConnection(m obj) (ast.PortConnection, error) {
	c := ast.PortConnection{Name: asString(m["name"])}

	if v, ok := m["expr"]; ok {
		e, err := decodeExpr(asObj(v))
		if err != nil {
			return c, err
		}

		c.Expr = e
	}

	return c, nil
}

func encodeParamOverride(o ast.ParamOverride) obj {
	return obj{"name": o.Name, "value": encodeExpr(o.Value)}
}

func decodeParamOverride(m obj) (ast.ParamOverride, error) {
	v, err := decodeExpr(asObj(m["value"]))
	if err != nil {
		return ast.ParamOverride{}, err
	}

	return ast.ParamOverride{Name: asString(m["name"]), Value: v}, nil
}

func encodeModuleInstance(n *ast.ModuleInstance) obj {
	overrides := make([]obj, len(n.ParamOverrides))
	for i, o := range n.ParamOverrides {
		overrides[i] = encodeParamOverride(o)
	}

	conns := make([]obj, len(n.PortConnections))
	for i, c := range n.PortConnections {
		conns[i] = encodePortConnection(c)
	}

	return wrap("ModuleInstance", n, obj{
		"moduleName": n.ModuleName, "instanceName": n.InstanceName,
		"paramOverrides": overrides, "portConnections": conns,
	})
}

func decodeModuleInstance(m obj) (*ast.ModuleInstance, error) {
	n := &ast.ModuleInstance{ModuleName: asString(m["moduleName"]), InstanceName: asString(m["instanceName"])}
	applyBase(n, m)

	for _, om := range asObjSlice(m["paramOverrides"]) {
		o, err := decodeParamOverride(om)
		if err != nil {
			return nil, err
		}

		n.ParamOverrides = append(n.ParamOverrides, o)
	}

	for _, cm := range asObjSlice(m["portConnections"]) {
		c, err := decodePortConnection(cm)
		if err != nil {
			return nil, err
		}

		n.PortConnections = append(n.PortConnections, c)
	}

	return n, nil
}

func encodeGenerate(n *ast.Generate) obj {
	items := make([]obj, len(n.Items))
	for i, it := range n.Items {
		items[i] = encodeNode(it)
	}

	return wrap("Generate", n, obj{"items": items})
}

func decodeGenerate(m obj) (*ast.Generate, error) {
	n := &ast.Generate{}
	applyBase(n, m)

	for _, im := range asObjSlice(m["items"]) {
		node, err := decodeNode(im)
		if err != nil {
			return nil, err
		}

		item, ok := node.(ast.GenerateItem)
		if !ok {
			return nil, fmt.Errorf("astjson: node %q is not a generate item", typeOf(im))
		}

		n.Items = append(n.Items, item)
	}

	return n, nil
}

// ---- Statements ----

func isExprType(t string) bool {
	switch t {
	case "NumberLiteral", "StringLiteral", "Identifier", "BinaryOp", "UnaryOp", "TernaryOp",
		"BitSelect", "PartSelect", "Concat", "Replication", "FunctionCall":
		return true
	default:
		return false
	}
}

func encodeStmt(s ast.Statement) obj {
	switch n := s.(type) {
	case *ast.BlockingAssign:
		return wrap("BlockingAssign", n, obj{"lhs": encodeExpr(n.Lhs), "rhs": encodeExpr(n.Rhs)})

	case *ast.NonBlockingAssign:
		return wrap("NonBlockingAssign", n, obj{"lhs": encodeExpr(n.Lhs), "rhs": encodeExpr(n.Rhs)})

	case *ast.If:
		f := obj{"cond": encodeExpr(n.Cond)}
		if n.Then != nil {
			f["then"] = encodeStmt(n.Then)
		}

		if n.Else != nil {
			f["else"] = encodeStmt(n.Else)
		}

		return wrap("If", n, f)

	case *ast.Case:
		items := make([]obj, len(n.Items))
		for i, it := range n.Items {
			items[i] = encodeCaseItem(it)
		}

		f := obj{"kind": int(n.Kind), "expr": encodeExpr(n.Expr), "items": items}
		if n.Default != nil {
			f["default"] = encodeStmt(n.Default)
		}

		return wrap("Case", n, f)

	case *ast.For:
		f := obj{}
		if n.Init != nil {
			f["init"] = encodeStmt(n.Init)
		}

		if n.Cond != nil {
			f["cond"] = encodeExpr(n.Cond)
		}

		if n.Step != nil {
			f["step"] = encodeStmt(n.Step)
		}

		if n.Body != nil {
			f["body"] = encodeStmt(n.Body)
		}

		return wrap("For", n, f)

	case *ast.While:
		return wrap("While", n, obj{"cond": encodeExpr(n.Cond), "body": encodeStmtOrNil(n.Body)})

	case *ast.Repeat:
		return wrap("Repeat", n, obj{"count": encodeExpr(n.Count), "body": encodeStmtOrNil(n.Body)})

	case *ast.Forever:
		return wrap("Forever", n, obj{"body": encodeStmtOrNil(n.Body)})

	case *ast.Begin:
		return wrap("Begin", n, obj{
			"name": n.Name, "decls": encodeDeclList(n.Decls), "stmts": encodeStmtList(n.Stmts),
		})

	case *ast.EventTrigger:
		return wrap("EventTrigger", n, obj{"target": n.Target})

	case *ast.Disable:
		return wrap("Disable", n, obj{"target": n.Target})

	case *ast.TaskCall:
		return wrap("TaskCall", n, obj{"name": n.Name, "args": encodeExprList(n.Args)})

	case *ast.ModuleInstance:
		return encodeModuleInstance(n)

	case *ast.SystemTaskCall:
		return wrap("SystemTaskCall", n, obj{"name": n.Name, "args": encodeExprList(n.Args)})

	default:
		return obj{"_type": fmt.Sprintf("Unsupported(%T)", s)}
	}
}

func encodeStmtOrNil(s ast.Statement) any {
	if s == nil {
		return nil
	}

	return encodeStmt(s)
}

func encodeStmtList(ss []ast.Statement) []obj {
	out := make([]obj, len(ss))
	for i, s := range ss {
		out[i] = encodeStmt(s)
	}

	return out
}

func encodeExprList(es []ast.Expression) []obj {
	out := make([]obj, len(es))
	for i, e := range es {
		out[i] = encodeExpr(e)
	}

	return out
}

func decodeExprList(ms []obj) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(ms))

	for _, m := range ms {
		e, err := decodeExpr(m)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

func decodeStmtList(ms []obj) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(ms))

	for _, m := range ms {
		s, err := decodeStmt(m)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

func encodeCaseItem(it ast.CaseItem) obj {
	labels := make([]obj, len(it.Labels))
	for i, l := range it.Labels {
		labels[i] = encodeExpr(l)
	}

	o := obj{"labels": labels}
	if it.Body != nil {
		o["body"] = encodeStmt(it.Body)
	}

	return o
}

func decodeCaseItem(m obj) (ast.CaseItem, error) {
	labels, err := decodeExprList(asObjSlice(m["labels"]))
	if err != nil {
		return ast.CaseItem{}, err
	}

	it := ast.CaseItem{Labels: labels}

	if b, ok := m["body"]; ok {
		s, err := decodeStmt(asObj(b))
		if err != nil {
			return it, err
		}

		it.Body = s
	}

	return it, nil
}

func decodeStmt(m obj) (ast.Statement, error) {
	switch typeOf(m) {
	case "BlockingAssign":
		lhs, rhs, err := decodeLhsRhs(m)
		if err != nil {
			return nil, err
		}

		n := &ast.BlockingAssign{Lhs: lhs, Rhs: rhs}
		applyBase(n, m)

		return n, nil

	case "NonBlockingAssign":
		lhs, rhs, err := decodeLhsRhs(m)
		if err != nil {
			return nil, err
		}

		n := &ast.NonBlockingAssign{Lhs: lhs, Rhs: rhs}
		applyBase(n, m)

		return n, nil

	case "If":
		cond, err := decodeExpr(asObj(m["cond"]))
		if err != nil {
			return nil, err
		}

		n := &ast.If{Cond: cond}
		applyBase(n, m)

		if t, ok := m["then"]; ok {
			s, err := decodeStmt(asObj(t))
			if err != nil {
				return nil, err
			}

			n.Then = s
		}

		if e, ok := m["else"]; ok {
			s, err := decodeStmt(asObj(e))
			if err != nil {
				return nil, err
			}

			n.Else = s
		}

		return n, nil

	case "Case":
		expr, err := decodeExpr(asObj(m["expr"]))
		if err != nil {
			return nil, err
		}

		n := &ast.Case{Kind: ast.CaseKind(asInt(m["kind"])), Expr: expr}
		applyBase(n, m)

		for _, im := range asObjSlice(m["items"]) {
			it, err := decodeCaseItem(im)
			if err != nil {
				return nil, err
			}

			n.Items = append(n.Items, it)
		}

		if d, ok := m["default"]; ok {
			s, err := decodeStmt(asObj(d))
			if err != nil {
				return nil, err
			}

			n.Default = s
		}

		return n, nil

	case "For":
		n := &ast.For{}
		applyBase(n, m)

		if v, ok := m["init"]; ok {
			s, err := decodeStmt(asObj(v))
			if err != nil {
				return nil, err
			}

			n.Init = s
		}

		if v, ok := m["cond"]; ok {
			e, err := decodeExpr(asObj(v))
			if err != nil {
				return nil, err
			}

			n.Cond = e
		}

		if v, ok := m["step"]; ok {
			s, err := decodeStmt(asObj(v))
			if err != nil {
				return nil, err
			}

			n.Step = s
		}

		if v, ok := m["body"]; ok {
			s, err := decodeStmt(asObj(v))
			if err != nil {
				return nil, err
			}

			n.Body = s
		}

		return n, nil

	case "While":
		cond, err := decodeExpr(asObj(m["cond"]))
		if err != nil {
			return nil, err
		}

		n := &ast.While{Cond: cond}
		applyBase(n, m)

		if v, ok := m["body"]; ok && v != nil {
			s, err := decodeStmt(asObj(v))
			if err != nil {
				return nil, err
			}

			n.Body = s
		}

		return n, nil

	case "Repeat":
		count, err := decodeExpr(asObj(m["count"]))
		if err != nil {
			return nil, err
		}

		n := &ast.Repeat{Count: count}
		applyBase(n, m)

		if v, ok := m["body"]; ok && v != nil {
			s, err := decodeStmt(asObj(v))
			if err != nil {
				return nil, err
			}

			n.Body = s
		}

		return n, nil

	case "Forever":
		n := &ast.Forever{}
		applyBase(n, m)

		if v, ok := m["body"]; ok && v != nil {
			s, err := decodeStmt(asObj(v))
			if err != nil {
				return nil, err
			}

			n.Body = s
		}

		return n, nil

	case "Begin":
		decls, err := decodeDeclList(asObjSlice(m["decls"]))
		if err != nil {
			return nil, err
		}

		stmts, err := decodeStmtList(asObjSlice(m["stmts"]))
		if err != nil {
			return nil, err
		}

		n := &ast.Begin{Name: asString(m["name"]), Decls: decls, Stmts: stmts}
		applyBase(n, m)

		return n, nil

	case "EventTrigger":
		n := &ast.EventTrigger{Target: asString(m["target"])}
		applyBase(n, m)

		return n, nil

	case "Disable":
		n := &ast.Disable{Target: asString(m["target"])}
		applyBase(n, m)

		return n, nil

	case "TaskCall":
		args, err := decodeExprList(asObjSlice(m["args"]))
		if err != nil {
			return nil, err
		}

		n := &ast.TaskCall{Name: asString(m["name"]), Args: args}
		applyBase(n, m)

		return n, nil

	case "ModuleInstance":
		return decodeModuleInstance(m)

	case "SystemTaskCall":
		args, err := decodeExprList(asObjSlice(m["args"]))
		if err != nil {
			return nil, err
		}

		n := &ast.SystemTaskCall{Name: asString(m["name"]), Args: args}
		applyBase(n, m)

		return n, nil

	default:
		return nil, fmt.Errorf("astjson: unknown statement type %q", typeOf(m))
	}
}

func decodeLhsRhs(m obj) (ast.Expression, ast.Expression, error) {
	lhs, err := decodeExpr(asObj(m["lhs"]))
	if err != nil {
		return nil, nil, err
	}

	rhs, err := decodeExpr(asObj(m["rhs"]))
	if err != nil {
		return nil, nil, err
	}

	return lhs, rhs, nil
}

// ---- Expressions ----

func encodeExpr(e ast.Expression) obj {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return wrap("NumberLiteral", n, obj{
			"value": n.Value, "width": n.Width, "signed": n.Signed,
			"raw": n.Raw, "isReal": n.IsReal, "real": n.Real,
		})

	case *ast.StringLiteral:
		return wrap("StringLiteral", n, obj{"value": n.Value})

	case *ast.Identifier:
		return wrap("Identifier", n, obj{"name": n.Name, "path": n.Path})

	case *ast.BinaryOp:
		return wrap("BinaryOp", n, obj{"op": int(n.Op), "lhs": encodeExpr(n.Lhs), "rhs": encodeExpr(n.Rhs)})

	case *ast.UnaryOp:
		return wrap("UnaryOp", n, obj{"op": int(n.Op), "operand": encodeExpr(n.Operand)})

	case *ast.TernaryOp:
		return wrap("TernaryOp", n, obj{
			"cond": encodeExpr(n.Cond), "t": encodeExpr(n.T), "f": encodeExpr(n.F),
		})

	case *ast.BitSelect:
		f := obj{
			"target": encodeExpr(n.Target), "index": encodeExpr(n.Index), "selectType": int(n.SelectType),
		}
		if n.Width != nil {
			f["width"] = encodeExpr(n.Width)
		}

		return wrap("BitSelect", n, f)

	case *ast.PartSelect:
		return wrap("PartSelect", n, obj{
			"target": encodeExpr(n.Target), "msb": encodeExpr(n.MSB), "lsb": encodeExpr(n.LSB),
		})

	case *ast.Concat:
		return wrap("Concat", n, obj{"parts": encodeExprList(n.Parts)})

	case *ast.Replication:
		return wrap("Replication", n, obj{"count": encodeExpr(n.Count), "value": encodeExpr(n.Value)})

	case *ast.FunctionCall:
		return wrap("FunctionCall", n, obj{"name": n.Name, "args": encodeExprList(n.Args)})

	case *ast.SystemTaskCall:
		return wrap("SystemTaskCall", n, obj{"name": n.Name, "args": encodeExprList(n.Args)})

	default:
		return obj{"_type": fmt.Sprintf("Unsupported(%T)", e)}
	}
}

func decodeExpr(m obj) (ast.Expression, error) {
	switch typeOf(m) {
	case "NumberLiteral":
		n := &ast.NumberLiteral{
			Value: asUint64(m["value"]), Width: asUint(m["width"]), Signed: asBool(m["signed"]),
			Raw: asString(m["raw"]), IsReal: asBool(m["isReal"]), Real: asFloat(m["real"]),
		}
		applyBase(n, m)

		return n, nil

	case "StringLiteral":
		n := &ast.StringLiteral{Value: asString(m["value"])}
		applyBase(n, m)

		return n, nil

	case "Identifier":
		raw, _ := m["path"].([]any)
		path := make([]string, len(raw))

		for i, p := range raw {
			path[i], _ = p.(string)
		}

		n := &ast.Identifier{Name: asString(m["name"]), Path: path}
		applyBase(n, m)

		return n, nil

	case "BinaryOp":
		lhs, rhs, err := decodeLhsRhs(m)
		if err != nil {
			return nil, err
		}

		n := &ast.BinaryOp{Op: ast.BinOp(asInt(m["op"])), Lhs: lhs, Rhs: rhs}
		applyBase(n, m)

		return n, nil

	case "UnaryOp":
		operand, err := decodeExpr(asObj(m["operand"]))
		if err != nil {
			return nil, err
		}

		n := &ast.UnaryOp{Op: ast.UnOp(asInt(m["op"])), Operand: operand}
		applyBase(n, m)

		return n, nil

	case "TernaryOp":
		cond, err := decodeExpr(asObj(m["cond"]))
		if err != nil {
			return nil, err
		}

		t, err := decodeExpr(asObj(m["t"]))
		if err != nil {
			return nil, err
		}

		f, err := decodeExpr(asObj(m["f"]))
		if err != nil {
			return nil, err
		}

		n := &ast.TernaryOp{Cond: cond, T: t, F: f}
		applyBase(n, m)

		return n, nil

	case "BitSelect":
		target, err := decodeExpr(asObj(m["target"]))
		if err != nil {
			return nil, err
		}

		index, err := decodeExpr(asObj(m["index"]))
		if err != nil {
			return nil, err
		}

		n := &ast.BitSelect{Target: target, Index: index, SelectType: ast.SelectType(asInt(m["selectType"]))}
		applyBase(n, m)

		if w, ok := m["width"]; ok {
			we, err := decodeExpr(asObj(w))
			if err != nil {
				return nil, err
			}

			n.Width = we
		}

		return n, nil

	case "PartSelect":
		target, err := decodeExpr(asObj(m["target"]))
		if err != nil {
			return nil, err
		}

		msb, err := decodeExpr(asObj(m["msb"]))
		if err != nil {
			return nil, err
		}

		lsb, err := decodeExpr(asObj(m["lsb"]))
		if err != nil {
			return nil, err
		}

		n := &ast.PartSelect{Target: target, MSB: msb, LSB: lsb}
		applyBase(n, m)

		return n, nil

	case "Concat":
		parts, err := decodeExprList(asObjSlice(m["parts"]))
		if err != nil {
			return nil, err
		}

		n := &ast.Concat{Parts: parts}
		applyBase(n, m)

		return n, nil

	case "Replication":
		count, err := decodeExpr(asObj(m["count"]))
		if err != nil {
			return nil, err
		}

		value, err := decodeExpr(asObj(m["value"]))
		if err != nil {
			return nil, err
		}

		n := &ast.Replication{Count: count, Value: value}
		applyBase(n, m)

		return n, nil

	case "FunctionCall":
		args, err := decodeExprList(asObjSlice(m["args"]))
		if err != nil {
			return nil, err
		}

		n := &ast.FunctionCall{Name: asString(m["name"]), Args: args}
		applyBase(n, m)

		return n, nil

	case "SystemTaskCall":
		args, err := decodeExprList(asObjSlice(m["args"]))
		if err != nil {
			return nil, err
		}

		n := &ast.SystemTaskCall{Name: asString(m["name"]), Args: args}
		applyBase(n, m)

		return n, nil

	default:
		return nil, fmt.Errorf("astjson: unknown expression type %q", typeOf(m))
	}
}
