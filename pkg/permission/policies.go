package permission

// AdministratorEdit guards user management: every method requires an
// authenticated admin or superuser.
type AdministratorEdit struct{}

func (p AdministratorEdit) Authorize(req Request) bool {
	return req.Identity.IsAdmin()
}

func (p AdministratorEdit) AuthorizeObject(req Request, _ Authored) bool {
	return p.Authorize(req)
}

// AdminOrReadOnly guards the catalogue: reads are open to anyone, writes
// require an admin.
type AdminOrReadOnly struct{}

func (p AdminOrReadOnly) Authorize(req Request) bool {
	if SafeMethod(req.Method) {
		return true
	}
	return req.Identity.IsAdmin()
}

func (p AdminOrReadOnly) AuthorizeObject(req Request, _ Authored) bool {
	return p.Authorize(req)
}

// AdminModeratorOrAuthor guards reviews and comments: reads are open, any
// authenticated user may create, but a single record may only be changed by
// an admin, a moderator or its author.
type AdminModeratorOrAuthor struct{}

func (p AdminModeratorOrAuthor) Authorize(req Request) bool {
	if SafeMethod(req.Method) {
		return true
	}
	return req.Identity.Authenticated
}

func (p AdminModeratorOrAuthor) AuthorizeObject(req Request, obj Authored) bool {
	if SafeMethod(req.Method) {
		return true
	}

	ident := req.Identity
	if !ident.Authenticated {
		return false
	}

	return ident.IsAdmin() || ident.IsModerator() || obj.Author() == ident.UserID
}
