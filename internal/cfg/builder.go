package cfg

import "github.com/gscls/analyzer/pkg/ast"

type builder struct {
	g      *Graph
	nextID int
	scope  int

	breakTargets    []*Node
	continueTargets []*Node
}

func (b *builder) newNode(k Kind) *Node {
	n := &Node{ID: b.nextID, Kind: k, Scope: b.scope}
	b.nextID++
	b.g.Nodes = append(b.g.Nodes, n)
	return n
}

func (b *builder) newBlock() *Node { return b.newNode(BasicBlock) }

// attach links cur to next with a Normal edge, unless cur has already
// terminated (cur == nil, e.g. the preceding statement was a return).
func attach(cur, next *Node) *Node {
	if cur != nil {
		cur.addSucc(next, Normal)
	}
	return next
}

// Build constructs the control-flow graph for a single function, method,
// or namespaced function body (spec §4.3).
func Build(fn *ast.FunDefn) *Graph {
	g := &Graph{}
	b := &builder{g: g}
	return b.buildBody(fn, fn.Body)
}

// BuildStructor constructs the graph for a class constructor/destructor.
func BuildStructor(s *ast.Structor) *Graph {
	g := &Graph{}
	b := &builder{g: g}
	return b.buildBody(s, s.Body)
}

func (b *builder) buildBody(origin ast.Node, body *ast.StmtList) *Graph {
	entry := b.newNode(FunctionEntry)
	entry.Origin = origin
	b.g.Entry = entry
	exit := b.newNode(FunctionExit)
	b.g.Exit = exit

	head := b.newBlock()
	entry.addSucc(head, Normal)
	tail := head
	if body != nil {
		for _, s := range body.Stmts {
			tail = b.buildStmt(tail, s)
		}
	}
	if tail != nil {
		tail.addSucc(exit, Normal)
	}
	return b.g
}

// BuildClass links a class's ClassEntry → ClassMembersBlock → each
// method/constructor/destructor's own graph (spec §4.3).
func BuildClass(cd *ast.ClassDefn) *ClassGraph {
	entry := &Node{Kind: ClassEntry, Origin: cd}
	members := &Node{Kind: ClassMembersBlock, Origin: cd}
	entry.addSucc(members, Normal)

	methods := make(map[string]*Graph, len(cd.Methods))
	for _, m := range cd.Methods {
		mg := Build(m)
		methods[m.Name] = mg
		members.addSucc(mg.Entry, Normal)
	}
	cg := &ClassGraph{Entry: entry, Members: members, Methods: methods}
	if cd.Ctor != nil {
		cg.Ctor = BuildStructor(cd.Ctor)
		members.addSucc(cg.Ctor.Entry, Normal)
	}
	if cd.Dtor != nil {
		cg.Dtor = BuildStructor(cd.Dtor)
		members.addSucc(cg.Dtor.Entry, Normal)
	}
	return cg
}

func (b *builder) ensureBlock(cur *Node) *Node {
	if cur == nil {
		return b.newBlock()
	}
	return cur
}

// buildStmt threads the "open" tail block through s, returning the new
// open tail, or nil if s unconditionally terminates flow (return, break,
// continue).
func (b *builder) buildStmt(cur *Node, s ast.Statement) *Node {
	switch st := s.(type) {
	case *ast.StmtList:
		b.scope++
		for _, inner := range st.Stmts {
			cur = b.buildStmt(cur, inner)
		}
		b.scope--
		return cur
	case *ast.Empty:
		return cur
	case *ast.If:
		return b.buildIf(cur, st)
	case *ast.While:
		return b.buildWhile(cur, st)
	case *ast.DoWhile:
		return b.buildDoWhile(cur, st)
	case *ast.For:
		return b.buildFor(cur, st)
	case *ast.Foreach:
		return b.buildForeach(cur, st)
	case *ast.Switch:
		return b.buildSwitch(cur, st)
	case *ast.Return:
		cur = b.ensureBlock(cur)
		cur.Stmts = append(cur.Stmts, s)
		cur.addSucc(b.g.Exit, Normal)
		return nil
	case *ast.Break:
		cur = b.ensureBlock(cur)
		cur.Stmts = append(cur.Stmts, s)
		if len(b.breakTargets) > 0 {
			cur.addSucc(b.breakTargets[len(b.breakTargets)-1], Normal)
		}
		return nil
	case *ast.Continue:
		cur = b.ensureBlock(cur)
		cur.Stmts = append(cur.Stmts, s)
		if len(b.continueTargets) > 0 {
			cur.addSucc(b.continueTargets[len(b.continueTargets)-1], Back)
		}
		return nil
	case *ast.DevBlock:
		for _, inner := range st.Body {
			cur = b.buildStmt(cur, inner)
		}
		return cur
	default:
		// ExprStmt, Const, Wait, and anything else with no control-flow
		// effect simply joins the current block.
		cur = b.ensureBlock(cur)
		cur.Stmts = append(cur.Stmts, s)
		return cur
	}
}

func (b *builder) buildIf(cur *Node, st *ast.If) *Node {
	d := b.newNode(Decision)
	d.Cond = st.Cond
	d.Origin = st
	attach(cur, d)

	thenHead := b.newBlock()
	d.addSucc(thenHead, True)
	thenTail := b.buildStmt(thenHead, st.Then)

	merge := b.newBlock()
	if thenTail != nil {
		thenTail.addSucc(merge, Normal)
	}

	if st.Else != nil {
		elseHead := b.newBlock()
		d.addSucc(elseHead, False)
		elseTail := b.buildStmt(elseHead, st.Else)
		if elseTail != nil {
			elseTail.addSucc(merge, Normal)
		}
	} else {
		d.addSucc(merge, False)
	}
	return merge
}

func (b *builder) buildWhile(cur *Node, st *ast.While) *Node {
	d := b.newNode(Decision)
	d.Cond = st.Cond
	d.Origin = st
	attach(cur, d)

	bodyHead := b.newBlock()
	merge := b.newBlock()
	d.addSucc(bodyHead, True)
	d.addSucc(merge, False)

	b.continueTargets = append(b.continueTargets, d)
	b.breakTargets = append(b.breakTargets, merge)
	b.scope++
	bodyTail := b.buildStmt(bodyHead, st.Body)
	b.scope--
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

	if bodyTail != nil {
		bodyTail.addSucc(d, Back)
	}
	return merge
}

func (b *builder) buildDoWhile(cur *Node, st *ast.DoWhile) *Node {
	bodyHead := b.newBlock()
	attach(cur, bodyHead)

	d := b.newNode(Decision)
	d.Cond = st.Cond
	d.Origin = st
	merge := b.newBlock()

	b.continueTargets = append(b.continueTargets, d)
	b.breakTargets = append(b.breakTargets, merge)
	b.scope++
	bodyTail := b.buildStmt(bodyHead, st.Body)
	b.scope--
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

	attach(bodyTail, d)
	d.addSucc(bodyHead, True)
	d.addSucc(merge, False)
	return merge
}

func (b *builder) buildFor(cur *Node, st *ast.For) *Node {
	if st.Init != nil {
		cur = b.ensureBlock(cur)
		cur.Stmts = append(cur.Stmts, st.Init)
	}
	d := b.newNode(Iteration)
	d.Cond = st.Cond
	d.Init = st.Init
	d.Incr = st.Incr
	d.Origin = st
	attach(cur, d)

	bodyHead := b.newBlock()
	merge := b.newBlock()
	d.addSucc(bodyHead, True)
	d.addSucc(merge, False)

	incr := b.newBlock()
	if st.Incr != nil {
		incr.Stmts = append(incr.Stmts, st.Incr)
	}

	b.continueTargets = append(b.continueTargets, incr)
	b.breakTargets = append(b.breakTargets, merge)
	b.scope++
	bodyTail := b.buildStmt(bodyHead, st.Body)
	b.scope--
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

	attach(bodyTail, incr)
	incr.addSucc(d, Back)
	return merge
}

func (b *builder) buildForeach(cur *Node, st *ast.Foreach) *Node {
	e := b.newNode(Enumeration)
	e.Key = st.Key
	e.Value = st.Value
	e.Coll = st.Coll
	e.Origin = st
	attach(cur, e)

	bodyHead := b.newBlock()
	merge := b.newBlock()
	e.addSucc(bodyHead, True)
	e.addSucc(merge, False)

	b.continueTargets = append(b.continueTargets, e)
	b.breakTargets = append(b.breakTargets, merge)
	b.scope++
	bodyTail := b.buildStmt(bodyHead, st.Body)
	b.scope--
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

	if bodyTail != nil {
		bodyTail.addSucc(e, Back)
	}
	return merge
}

func (b *builder) buildSwitch(cur *Node, st *ast.Switch) *Node {
	sw := b.newNode(Switch)
	sw.Expr = st.Expr
	sw.Origin = st
	attach(cur, sw)

	merge := b.newBlock()
	b.breakTargets = append(b.breakTargets, merge)
	b.scope++

	var prevTail *Node
	hasDefault := false
	for _, grp := range st.Groups {
		for _, l := range grp.Labels {
			if l.IsDefault {
				hasDefault = true
			}
		}
		scd := b.newNode(SwitchCaseDecision)
		scd.Labels = grp.Labels
		scd.Owner = sw
		sw.addSucc(scd, Normal)
		if prevTail != nil {
			prevTail.addSucc(scd, CaseFallthrough)
		}
		bodyHead := b.newBlock()
		scd.addSucc(bodyHead, Normal)
		tail := bodyHead
		for _, s := range grp.Body {
			tail = b.buildStmt(tail, s)
		}
		prevTail = tail
	}
	if prevTail != nil {
		prevTail.addSucc(merge, Normal)
	}
	if !hasDefault {
		sw.addSucc(merge, Normal)
	}

	b.scope--
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	return merge
}
